package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fsnav/fsnav/internal/api"
	"github.com/fsnav/fsnav/internal/config"
	"github.com/fsnav/fsnav/internal/models"
)

// fakeServer answers the handful of endpoints the services call. Failures
// are reported through the envelope code with HTTP 200 so the retrying
// transport does not kick in.
type fakeServer struct {
	mu          sync.Mutex
	user        models.User
	dirs        map[string][]models.Entry
	transitions []models.TransitionRequest
	lists       []models.ListRequest
	failPaths   map[string]bool
	tasks       map[string][]map[string]interface{}
	retried     []string
	settings    map[string]interface{}
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		user:      models.User{Username: "alice", Permissions: []models.PermissionRoot{{Path: "/"}}},
		dirs:      map[string][]models.Entry{},
		failPaths: map[string]bool{},
		tasks:     map[string][]map[string]interface{}{},
		settings:  map[string]interface{}{"pagination_type": "all", "default_page_size": "30"},
	}
}

func writeEnvelope(w http.ResponseWriter, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"code": code, "message": message, "data": data})
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.URL.Path == "/api/me":
		writeEnvelope(w, 200, "success", s.user)

	case r.URL.Path == "/api/public/settings":
		writeEnvelope(w, 200, "success", s.settings)

	case r.URL.Path == "/api/fs/get":
		var req models.GetRequest
		json.NewDecoder(r.Body).Decode(&req)
		if _, ok := s.dirs[req.Path]; ok {
			writeEnvelope(w, 200, "success", models.EntryDescriptor{Entry: models.Entry{Name: req.Path, IsDir: true}})
			return
		}
		writeEnvelope(w, 500, "object not found", nil)

	case r.URL.Path == "/api/fs/list":
		var req models.ListRequest
		json.NewDecoder(r.Body).Decode(&req)
		s.lists = append(s.lists, req)
		all, ok := s.dirs[req.Path]
		if !ok {
			writeEnvelope(w, 500, "object not found", nil)
			return
		}
		start := (req.Page - 1) * req.PerPage
		end := start + req.PerPage
		if start > len(all) {
			start = len(all)
		}
		if end > len(all) {
			end = len(all)
		}
		writeEnvelope(w, 200, "success", models.ListingPage{
			Content: all[start:end],
			Total:   int64(len(all)),
			Page:    req.Page,
			PerPage: req.PerPage,
		})

	case r.URL.Path == "/api/fs/s3_transition":
		var req models.TransitionRequest
		json.NewDecoder(r.Body).Decode(&req)
		if s.failPaths[req.Path] {
			writeEnvelope(w, 500, "transition rejected", nil)
			return
		}
		s.transitions = append(s.transitions, req)
		id := ""
		if !strings.HasSuffix(req.Path, ".noid") {
			id = "task-" + req.Path
		}
		writeEnvelope(w, 200, "success", models.TransitionResult{TaskID: id})

	case strings.HasPrefix(r.URL.Path, "/api/admin/task/s3_transition/retry"):
		s.retried = append(s.retried, r.URL.Query().Get("tid"))
		writeEnvelope(w, 200, "success", nil)

	case strings.HasPrefix(r.URL.Path, "/api/admin/task/s3_transition/"):
		state := strings.TrimPrefix(r.URL.Path, "/api/admin/task/s3_transition/")
		writeEnvelope(w, 200, "success", s.tasks[state])

	default:
		writeEnvelope(w, 404, "not found", nil)
	}
}

func (s *fakeServer) transitionPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.transitions))
	for i, t := range s.transitions {
		out[i] = t.Path
	}
	return out
}

func (s *fakeServer) listCalls() []models.ListRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ListRequest(nil), s.lists...)
}

func newTestAPIClient(t *testing.T, s *fakeServer) *api.Client {
	t.Helper()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(&config.Config{ServerURL: srv.URL, ProxyMode: config.ProxyModeNone}, nil)
	require.NoError(t, err)
	return client
}

func file(name, class string) models.Entry {
	return models.Entry{Name: name, Size: 10, StorageClass: class}
}

func dir(name string) models.Entry {
	return models.Entry{Name: name, IsDir: true}
}
