// Package llm holds behaviour shared by the LLM service adapters: mapping
// provider responses onto domain errors and pacing outgoing requests.
package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/bidflow/internal/core/domain"
)

// maxMessageLen bounds the provider message carried in errors.
const maxMessageLen = 512

// StatusError converts a non-2xx provider response into a typed domain
// error. message is the provider's error text, or the raw body.
func StatusError(provider string, resp *http.Response, message string) error {
	message = trimMessage(message)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &domain.AuthError{Provider: provider, StatusCode: resp.StatusCode, Message: message}
	case http.StatusTooManyRequests:
		return &domain.RateLimitError{
			Provider:   provider,
			Message:    message,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &domain.TimeoutError{Provider: provider, Err: errors.New(message)}
	default:
		return &domain.ProviderError{Provider: provider, StatusCode: resp.StatusCode, Message: message}
	}
}

// TransportError converts a failure to reach the provider into a typed
// domain error. Deadline and network timeouts become TimeoutError;
// cancellation is returned unchanged.
func TransportError(provider string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.TimeoutError{Provider: provider, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &domain.TimeoutError{Provider: provider, Err: err}
	}
	return &domain.ProviderError{Provider: provider, Message: "request failed", Err: err}
}

// MalformedError reports a response the adapter could not interpret.
func MalformedError(provider string, err error) error {
	return &domain.ProviderError{Provider: provider, Message: "malformed response", Err: err}
}

// parseRetryAfter reads a Retry-After header given in seconds or as an
// HTTP date. Unparseable values yield zero.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// trimMessage bounds s to maxMessageLen characters, cutting on a rune
// boundary so multi-byte provider text stays valid UTF-8.
func trimMessage(s string) string {
	s = strings.TrimSpace(s)
	if cut := domain.Truncate(s, maxMessageLen); len(cut) < len(s) {
		return cut + "..."
	}
	return s
}
