package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnav/fsnav/internal/config"
	"github.com/fsnav/fsnav/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(&config.Config{ServerURL: srv.URL, Token: "tok", ProxyMode: config.ProxyModeNone}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func writeEnvelope(w http.ResponseWriter, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    code,
		"message": message,
		"data":    data,
	})
}

// TestNewClientRejectsEmptyServerURL verifies that NewClient fails with a clear
// error instead of creating a client that fails every request.
func TestNewClientRejectsEmptyServerURL(t *testing.T) {
	_, err := NewClient(&config.Config{ProxyMode: config.ProxyModeNone}, nil)
	if err == nil {
		t.Fatal("NewClient() should return error for empty server URL")
	}
	if !strings.Contains(err.Error(), "server URL is empty") {
		t.Errorf("NewClient() error = %q, want error containing 'server URL is empty'", err.Error())
	}
}

func TestClient_ListSendsRequestAndDecodes(t *testing.T) {
	var got models.ListRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/fs/list" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "tok" {
			t.Errorf("Authorization = %q, want tok", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		writeEnvelope(w, 200, "success", map[string]interface{}{
			"content":  []map[string]interface{}{{"name": "a.txt", "size": 3}},
			"total":    120,
			"page":     2,
			"per_page": 50,
			"has_more": true,
			"provider": "S3",
		})
	})

	page, err := client.List(context.Background(), models.ListRequest{Path: "/docs", Page: 2, PerPage: 50, Refresh: true})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got.Path != "/docs" || got.Page != 2 || got.PerPage != 50 || !got.Refresh {
		t.Errorf("request body = %+v", got)
	}
	if len(page.Content) != 1 || page.Content[0].Name != "a.txt" {
		t.Errorf("Content = %+v", page.Content)
	}
	if page.HasMore == nil || !*page.HasMore {
		t.Errorf("HasMore = %v, want true", page.HasMore)
	}
	if page.Total != 120 || page.Provider != "S3" {
		t.Errorf("Total = %d, Provider = %q", page.Total, page.Provider)
	}
}

func TestClient_EnvelopeErrorCarriesCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 403, "password is incorrect or you have no permission", nil)
	})

	_, err := client.Get(context.Background(), models.GetRequest{Path: "/secret"})
	if err == nil {
		t.Fatal("Get() should fail")
	}
	if StatusCode(err) != 403 {
		t.Errorf("StatusCode() = %d, want 403", StatusCode(err))
	}
	if !IsPermissionDenied(err) {
		t.Error("IsPermissionDenied() = false, want true")
	}
	if Message(err) != "password is incorrect or you have no permission" {
		t.Errorf("Message() = %q", Message(err))
	}
}

func TestClient_NonJSONErrorUsesHTTPStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	})

	_, err := client.Me(context.Background())
	if StatusCode(err) != http.StatusNotFound {
		t.Errorf("StatusCode() = %d, want 404", StatusCode(err))
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeEnvelope(w, 200, "success", map[string]interface{}{"username": "alice", "permissions": []map[string]string{{"path": "/a"}}})
	})

	user, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	if user.Username != "alice" || len(user.Permissions) != 1 || user.Permissions[0].Path != "/a" {
		t.Errorf("user = %+v", user)
	}
}

func TestClient_CancelledRequestMapsToMinusOne(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.List(ctx, models.ListRequest{Path: "/"})
	if StatusCode(err) != CodeCancelled {
		t.Errorf("StatusCode() = %d, want %d (err = %v)", StatusCode(err), CodeCancelled, err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("errors.Is(err, context.Canceled) = false for %v", err)
	}
}

func TestClient_PublicSettingsAcceptsMixedTypes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 200, "success", map[string]interface{}{
			"pagination_type":   "auto_load_more",
			"default_page_size": 100,
		})
	})

	settings, err := client.PublicSettings(context.Background())
	if err != nil {
		t.Fatalf("PublicSettings() error = %v", err)
	}
	if settings.PaginationType != "auto_load_more" || settings.DefaultPageSize != "100" {
		t.Errorf("settings = %+v", settings)
	}
}

func TestClient_S3TransitionAndTasks(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/fs/s3_transition":
			var req models.TransitionRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.Payload.Action != models.TransitionRestore || req.Payload.Tier != "Bulk" {
				t.Errorf("payload = %+v", req.Payload)
			}
			writeEnvelope(w, 200, "success", map[string]string{"task_id": "t-1"})
		case "/api/admin/task/s3_transition/done":
			writeEnvelope(w, 200, "success", []map[string]interface{}{{"id": "t-1", "name": "s3 restore /a/b", "state": 2}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	days := int32(3)
	res, err := client.S3Transition(context.Background(), models.TransitionRequest{
		Path:    "/a/b",
		Payload: models.TransitionPayload{Action: models.TransitionRestore, Days: &days, Tier: "Bulk"},
	})
	if err != nil || res.TaskID != "t-1" {
		t.Fatalf("S3Transition() = %+v, %v", res, err)
	}

	tasks, err := client.ListTasks(context.Background(), models.TaskTypeS3Transition, true)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].State != models.TaskSucceeded {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestClient_PreviewPageURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	entry := models.Entry{Name: "report 1.docx", Sign: "abc"}

	got := client.PreviewPageURL("/docs", entry, 2)
	want := client.BaseURL() + "/p/docs/report%201.docx?sign=abc&type=preview&page=2"
	if got != want {
		t.Errorf("PreviewPageURL() = %q, want %q", got, want)
	}
}
