package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fsnav/fsnav/internal/config"
	"github.com/fsnav/fsnav/internal/constants"
	"github.com/fsnav/fsnav/internal/http"
	"github.com/fsnav/fsnav/internal/logging"
	"github.com/fsnav/fsnav/internal/ratelimit"
	"github.com/fsnav/fsnav/internal/version"
)

// retryLogger implements the retryablehttp.LeveledLogger interface on top
// of the client logger.
type retryLogger struct {
	logger *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

// envelope wraps every API response body.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the file server API.
type Client struct {
	httpClient *nethttp.Client
	baseURL    string
	logger     *logging.Logger
	limiter    *ratelimit.RateLimiter

	mu    sync.RWMutex
	token string
}

// NewClient creates a new API client from cfg. The token may be empty for
// guest access.
func NewClient(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.ServerURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("server URL is empty: set [server] url in %s or pass --server", config.DefaultConfigPath())
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	httpClient, err := http.ConfigureHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = constants.MaxRetries
	retryClient.RetryWaitMin = constants.RetryInitialDelay
	retryClient.RetryWaitMax = constants.RetryMaxDelay
	retryClient.CheckRetry = http.CheckRetry
	retryClient.Backoff = http.Backoff
	// Hand the last response back so the envelope can be decoded.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = &retryLogger{logger: logger}

	return &Client{
		httpClient: retryClient.StandardClient(),
		baseURL:    baseURL,
		logger:     logger,
		limiter:    ratelimit.NewRateLimiter(cfg.RateLimit, constants.RequestBurst, logger),
		token:      cfg.Token,
	}, nil
}

// BaseURL returns the server URL without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken replaces the access token used for subsequent calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// do performs a request and decodes the envelope's data into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Code: CodeCancelled, Message: "request cancelled", Path: path, Err: context.Canceled}
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(err, context.Canceled) {
			return &Error{Code: CodeCancelled, Message: "request cancelled", Path: path, Err: context.Canceled}
		}
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("API call failed")
		return &Error{Code: CodeTransport, Message: err.Error(), Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return &Error{Code: CodeCancelled, Message: "request cancelled", Path: path, Err: context.Canceled}
		}
		return &Error{Code: CodeTransport, Message: fmt.Sprintf("failed to read response: %v", err), Path: path, Err: err}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("API call")

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode != nethttp.StatusOK {
			return &Error{Code: resp.StatusCode, Message: strings.TrimSpace(string(raw)), Path: path}
		}
		return &Error{Code: CodeTransport, Message: fmt.Sprintf("failed to decode response: %v", err), Path: path, Err: err}
	}
	if env.Code == 0 {
		env.Code = resp.StatusCode
	}
	if env.Code != nethttp.StatusOK {
		return &Error{Code: env.Code, Message: env.Message, Path: path}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", path, err)
		}
	}
	return nil
}
