package constants

import (
	"time"
)

// Listing page sizes
const (
	// DefaultPageSize - page size used when neither the request, the query
	// hint, nor the site configuration provides one
	DefaultPageSize = 50

	// MaxPageSize - upper bound for any list request; larger values are clamped
	MaxPageSize = 500

	// MinPageSize - lower bound for any list request
	MinPageSize = 1
)

// PageSizeOptions are the page sizes offered by the classic pager.
// Values above MaxPageSize are never offered.
var PageSizeOptions = []int{50, 100, 200, 300, 500}

// Navigation history
const (
	// DefaultHistorySize - number of (path, page) snapshots kept for back-navigation
	DefaultHistorySize = 256

	// MaxHistorySize - hard cap accepted from configuration
	MaxHistorySize = 4096
)

// Retry configuration
const (
	// MaxRetries - maximum number of retries for transient HTTP errors
	MaxRetries = 3

	// RetryInitialDelay - initial delay before first retry (200ms)
	RetryInitialDelay = 200 * time.Millisecond

	// RetryMaxDelay - maximum delay between retries (5s)
	RetryMaxDelay = 5 * time.Second
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels (1000)
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - maximum buffer size for high-throughput scenarios (5000)
	EventBusMaxBuffer = 5000
)

// UI Updates
const (
	// SpinnerRefreshInterval - refresh rate of the fetch spinner shown while a
	// listing request is in flight
	SpinnerRefreshInterval = 100 * time.Millisecond

	// AutoLoadPollInterval - how often the interactive browser re-checks the
	// auto-load sentinel when the listing view is scrolled to the end
	AutoLoadPollInterval = 250 * time.Millisecond
)

// Request pacing
const (
	// DefaultRequestRate - API requests per second allowed by the client.
	// Auto-loading large directories is the main source of bursts.
	DefaultRequestRate = 10.0

	// RequestBurst - requests that may be sent back to back before pacing starts
	RequestBurst = 20
)

// API and Context Timeouts
const (
	// APIContextTimeout - default timeout for one-shot API operations (30 seconds)
	APIContextTimeout = 30 * time.Second

	// APIConnectionTestTimeout - timeout for testing API connectivity (10 seconds)
	APIConnectionTestTimeout = 10 * time.Second
)

// HTTP Client Timeouts
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (30 seconds)
	HTTPTLSHandshakeTimeout = 30 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue response (1 second)
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPDialTimeout - timeout for establishing connection (30 seconds)
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive - keep-alive period for dialer (30 seconds)
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPResponseHeaderTimeout - time to wait for response headers (60 seconds)
	// Large directory listings with refresh=true can take a while server side.
	HTTPResponseHeaderTimeout = 60 * time.Second

	// HTTPMaxIdleConnsPerHost - idle connection pool per host
	HTTPMaxIdleConnsPerHost = 16
)

// Log rotation
const (
	LogFileMaxSizeMB  = 10
	LogFileMaxBackups = 5
	LogFileMaxAgeDays = 30
)
