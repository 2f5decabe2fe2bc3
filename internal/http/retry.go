package http

import (
	"context"
	"errors"
	"math/rand"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"
)

// ErrorType represents different classes of errors for retry strategy
type ErrorType int

const (
	// ErrorTypeSuccess indicates operation succeeded
	ErrorTypeSuccess ErrorType = iota
	// ErrorTypeCredential indicates authentication/authorization failure (401, 403)
	ErrorTypeCredential
	// ErrorTypeNetwork indicates network/connection issues (timeouts, connection refused, etc.)
	ErrorTypeNetwork
	// ErrorTypeRetryable indicates server errors that can be retried (500, 502, 503, throttling)
	ErrorTypeRetryable
	// ErrorTypeFatal indicates errors that should not be retried
	ErrorTypeFatal
)

// ClassifyError determines the error type of a transport-level failure.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeSuccess
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeFatal
	}

	errStr := strings.ToLower(err.Error())

	// Certificate problems never fix themselves.
	if strings.Contains(errStr, "x509") || strings.Contains(errStr, "certificate") {
		return ErrorTypeFatal
	}

	if strings.Contains(errStr, "tls handshake timeout") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "eof") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "timeout") {
		return ErrorTypeNetwork
	}

	return ErrorTypeFatal
}

// ClassifyResponse determines the error type of a completed HTTP exchange.
func ClassifyResponse(resp *nethttp.Response, err error) ErrorType {
	if err != nil {
		return ClassifyError(err)
	}
	if resp == nil {
		return ErrorTypeFatal
	}
	switch resp.StatusCode {
	case nethttp.StatusUnauthorized, nethttp.StatusForbidden:
		return ErrorTypeCredential
	case nethttp.StatusTooManyRequests,
		nethttp.StatusInternalServerError,
		nethttp.StatusBadGateway,
		nethttp.StatusServiceUnavailable,
		nethttp.StatusGatewayTimeout:
		return ErrorTypeRetryable
	}
	if resp.StatusCode >= 400 {
		return ErrorTypeFatal
	}
	return ErrorTypeSuccess
}

// CheckRetry is a retryablehttp.CheckRetry that retries network failures
// and transient server errors, and stops immediately once ctx is done.
func CheckRetry(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	switch ClassifyResponse(resp, err) {
	case ErrorTypeNetwork, ErrorTypeRetryable:
		return true, nil
	default:
		return false, nil
	}
}

// Backoff is a retryablehttp.Backoff using exponential backoff with full
// jitter. A Retry-After header on 429/503 responses takes precedence.
func Backoff(min, max time.Duration, attemptNum int, resp *nethttp.Response) time.Duration {
	if resp != nil && (resp.StatusCode == nethttp.StatusTooManyRequests || resp.StatusCode == nethttp.StatusServiceUnavailable) {
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
				d := time.Duration(secs) * time.Second
				if d > max {
					return max
				}
				return d
			}
		}
	}
	return CalculateBackoff(attemptNum+1, min, max)
}

// CalculateBackoff returns exponential backoff duration with full jitter
//
// Formula: random(0, min(maxDelay, initialDelay * 2^attempt))
func CalculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	if attempt <= 0 || initialDelay <= 0 {
		return 0
	}

	base := maxDelay
	if attempt < 30 {
		if exp := time.Duration(1<<uint(attempt)) * initialDelay; exp < maxDelay {
			base = exp
		}
	}
	if base <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(base)))
}

// ErrorTypeName returns a human-readable name for logging.
func ErrorTypeName(errType ErrorType) string {
	switch errType {
	case ErrorTypeSuccess:
		return "success"
	case ErrorTypeCredential:
		return "credential"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeRetryable:
		return "retryable"
	case ErrorTypeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}
