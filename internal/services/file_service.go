package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/fsnav/fsnav/internal/api"
	"github.com/fsnav/fsnav/internal/logging"
	"github.com/fsnav/fsnav/internal/models"
)

// FileService serves directory listings and entry descriptions from the
// API. It is the navigator's Backend and PermissionSource: the current
// user's permission roots are loaded once and cached.
type FileService struct {
	apiClient *api.Client
	logger    *logging.Logger

	mu       sync.RWMutex
	user     *models.User
	settings *models.PublicSettings
}

// NewFileService creates a new FileService.
func NewFileService(apiClient *api.Client, logger *logging.Logger) *FileService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &FileService{
		apiClient: apiClient,
		logger:    logger.Named("file-service"),
	}
}

// SetAPIClient updates the API client (e.g., after a token change) and
// forgets the cached profile and settings.
func (fs *FileService) SetAPIClient(client *api.Client) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.apiClient = client
	fs.user = nil
	fs.settings = nil
}

func (fs *FileService) client() (*api.Client, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if fs.apiClient == nil {
		return nil, fmt.Errorf("API client not configured")
	}
	return fs.apiClient, nil
}

// LoadUser fetches the current user's profile and caches it.
func (fs *FileService) LoadUser(ctx context.Context) (*models.User, error) {
	apiClient, err := fs.client()
	if err != nil {
		return nil, err
	}

	user, err := apiClient.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}

	fs.mu.Lock()
	fs.user = user
	fs.mu.Unlock()

	fs.logger.Debug().
		Str("user", user.Username).
		Int("roots", len(user.Permissions)).
		Msg("Loaded user profile")
	return user, nil
}

// User returns the cached profile, nil before LoadUser.
func (fs *FileService) User() *models.User {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.user
}

// Permissions returns the cached user's permission roots in server order.
func (fs *FileService) Permissions() []models.PermissionRoot {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if fs.user == nil {
		return nil
	}
	return append([]models.PermissionRoot(nil), fs.user.Permissions...)
}

// Settings returns the public site settings, fetching them on first use.
func (fs *FileService) Settings(ctx context.Context) (*models.PublicSettings, error) {
	fs.mu.RLock()
	cached := fs.settings
	fs.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	apiClient, err := fs.client()
	if err != nil {
		return nil, err
	}
	settings, err := apiClient.PublicSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load site settings: %w", err)
	}

	fs.mu.Lock()
	fs.settings = settings
	fs.mu.Unlock()
	return settings, nil
}

// DescribeEntry describes one path. API errors are returned unwrapped so
// their status code reaches the navigator's recovery rules.
func (fs *FileService) DescribeEntry(ctx context.Context, req models.GetRequest) (*models.EntryDescriptor, error) {
	apiClient, err := fs.client()
	if err != nil {
		return nil, err
	}
	return apiClient.Get(ctx, req)
}

// ListDirectory fetches one page of a directory.
func (fs *FileService) ListDirectory(ctx context.Context, req models.ListRequest) (*models.ListingPage, error) {
	apiClient, err := fs.client()
	if err != nil {
		return nil, err
	}
	return apiClient.List(ctx, req)
}

// ListAll fetches every page of a directory, perPage entries at a time.
// Used for non-interactive listings.
func (fs *FileService) ListAll(ctx context.Context, path, password string, perPage int, refresh bool) ([]models.Entry, error) {
	apiClient, err := fs.client()
	if err != nil {
		return nil, err
	}

	var all []models.Entry
	for page := 1; ; page++ {
		resp, err := apiClient.List(ctx, models.ListRequest{
			Path:     path,
			Password: password,
			Page:     page,
			PerPage:  perPage,
			Refresh:  refresh && page == 1,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Content...)

		respPage, respPerPage := page, perPage
		if resp.Page > 0 {
			respPage = resp.Page
		}
		if resp.PerPage > 0 {
			respPerPage = resp.PerPage
		}
		if len(resp.Content) == 0 || !resp.ComputeHasMore(respPage, respPerPage) {
			return all, nil
		}
	}
}

// PreviewInfo returns document preview metadata for a file.
func (fs *FileService) PreviewInfo(ctx context.Context, path, password string) (*models.PreviewInfo, error) {
	apiClient, err := fs.client()
	if err != nil {
		return nil, err
	}
	return apiClient.PreviewInfo(ctx, path, password)
}

// PreviewPageURLs returns one image URL per preview page of entry in dir.
func (fs *FileService) PreviewPageURLs(dir string, entry models.Entry, pages int) ([]string, error) {
	apiClient, err := fs.client()
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		urls = append(urls, apiClient.PreviewPageURL(dir, entry, i))
	}
	return urls, nil
}

// DownloadURL returns the proxy link of entry in dir.
func (fs *FileService) DownloadURL(dir string, entry models.Entry) (string, error) {
	apiClient, err := fs.client()
	if err != nil {
		return "", err
	}
	return apiClient.ProxyLink(dir, entry), nil
}
