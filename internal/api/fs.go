package api

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"
	"strconv"

	"github.com/fsnav/fsnav/internal/models"
)

// Me returns the current user's profile including permission roots.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, nethttp.MethodGet, "/api/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// PublicSettings returns the site settings visible without login.
func (c *Client) PublicSettings(ctx context.Context) (*models.PublicSettings, error) {
	// Values are usually strings, but some deployments emit numbers or bools.
	var raw map[string]interface{}
	if err := c.do(ctx, nethttp.MethodGet, "/api/public/settings", nil, &raw); err != nil {
		return nil, err
	}
	str := func(key string) string {
		v, ok := raw[key]
		if !ok || v == nil {
			return ""
		}
		switch t := v.(type) {
		case string:
			return t
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		default:
			return fmt.Sprint(t)
		}
	}
	return &models.PublicSettings{
		PaginationType:  str("pagination_type"),
		DefaultPageSize: str("default_page_size"),
		SiteTitle:       str("site_title"),
		Version:         str("version"),
	}, nil
}

// Get describes a single path.
func (c *Client) Get(ctx context.Context, req models.GetRequest) (*models.EntryDescriptor, error) {
	var desc models.EntryDescriptor
	if err := c.do(ctx, nethttp.MethodPost, "/api/fs/get", req, &desc); err != nil {
		return nil, err
	}
	return &desc, nil
}

// List fetches one page of a directory listing.
func (c *Client) List(ctx context.Context, req models.ListRequest) (*models.ListingPage, error) {
	var page models.ListingPage
	if err := c.do(ctx, nethttp.MethodPost, "/api/fs/list", req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Other invokes a driver-specific method on a path and decodes the result into out.
func (c *Client) Other(ctx context.Context, req models.OtherRequest, out interface{}) error {
	return c.do(ctx, nethttp.MethodPost, "/api/fs/other", req, out)
}

// PreviewInfo asks the document preview driver for page metadata.
func (c *Client) PreviewInfo(ctx context.Context, path, password string) (*models.PreviewInfo, error) {
	var info models.PreviewInfo
	err := c.Other(ctx, models.OtherRequest{Path: path, Password: password, Method: "doubao_preview"}, &info)
	if err != nil {
		return nil, fmt.Errorf("failed to get preview info: %w", err)
	}
	return &info, nil
}

// S3Transition submits an archive or restore request for one object.
func (c *Client) S3Transition(ctx context.Context, req models.TransitionRequest) (*models.TransitionResult, error) {
	var result models.TransitionResult
	if err := c.do(ctx, nethttp.MethodPost, "/api/fs/s3_transition", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTasks returns the admin task list of the given type.
// done selects finished tasks instead of pending/running ones.
func (c *Client) ListTasks(ctx context.Context, taskType string, done bool) ([]models.TaskInfo, error) {
	state := "undone"
	if done {
		state = "done"
	}
	var tasks []models.TaskInfo
	path := fmt.Sprintf("/api/admin/task/%s/%s", url.PathEscape(taskType), state)
	if err := c.do(ctx, nethttp.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// RetryTask re-queues a failed task.
func (c *Client) RetryTask(ctx context.Context, taskType, id string) error {
	path := fmt.Sprintf("/api/admin/task/%s/retry?tid=%s", url.PathEscape(taskType), url.QueryEscape(id))
	return c.do(ctx, nethttp.MethodPost, path, nil, nil)
}

// ProxyLink builds the download/proxy URL for a file entry under dir.
func (c *Client) ProxyLink(dir string, entry models.Entry) string {
	u := c.baseURL + "/p" + escapePath(joinPath(dir, entry.Name))
	if entry.Sign != "" {
		u += "?sign=" + url.QueryEscape(entry.Sign)
	}
	return u
}

// PreviewPageURL builds the image URL for one page of a document preview.
func (c *Client) PreviewPageURL(dir string, entry models.Entry, page int) string {
	link := c.ProxyLink(dir, entry)
	sep := "?"
	if entry.Sign != "" {
		sep = "&"
	}
	return fmt.Sprintf("%s%stype=preview&page=%d", link, sep, page)
}
