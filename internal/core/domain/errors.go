package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// Typed errors below wrap these so callers can match with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no extractor handles a document's MIME type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrIngestion indicates a document could not be parsed at all.
	ErrIngestion = errors.New("document ingestion failed")

	// ErrEmptyDocument indicates a document parsed but yielded no text.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrDependency indicates a pipeline is misconfigured.
	ErrDependency = errors.New("pipeline dependency error")

	// ErrContextKeyExists indicates a second write to a pipeline context key.
	ErrContextKeyExists = errors.New("context key already written")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Provider Errors.

	// ErrAuth indicates the provider rejected the credential.
	ErrAuth = errors.New("provider authentication failed")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates the provider did not answer in time.
	ErrTimeout = errors.New("provider timeout")

	// ErrProvider indicates any other provider-side failure.
	ErrProvider = errors.New("provider error")
)

// IngestionError is returned when a document cannot be parsed.
type IngestionError struct {
	URI    string
	Reason string
	Err    error
}

func (e *IngestionError) Error() string {
	msg := "ingest"
	if e.URI != "" {
		msg += " " + e.URI
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *IngestionError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIngestion.
func (e *IngestionError) Is(target error) bool { return target == ErrIngestion }

// DependencyError is returned when a pipeline is constructed with a stage
// whose declared inputs are not produced by an earlier stage, or whose
// descriptor is otherwise invalid.
type DependencyError struct {
	Pipeline string
	Stage    StageID
	Missing  StageID
	Reason   string
}

func (e *DependencyError) Error() string {
	if e.Missing != "" {
		return fmt.Sprintf("pipeline %s: stage %s requires %s, which is not produced by an earlier stage",
			e.Pipeline, e.Stage, e.Missing)
	}
	return fmt.Sprintf("pipeline %s: stage %s: %s", e.Pipeline, e.Stage, e.Reason)
}

// Is reports whether target is ErrDependency.
func (e *DependencyError) Is(target error) bool { return target == ErrDependency }

// AuthError reports a rejected credential (HTTP 401/403).
type AuthError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Is reports whether target is ErrAuth.
func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// RateLimitError reports an HTTP 429 from the provider.
type RateLimitError struct {
	Provider   string
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited (retry after %s): %s", e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("%s: rate limited: %s", e.Provider, e.Message)
}

// Is reports whether target is ErrRateLimited.
func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// TimeoutError reports a request that exceeded its deadline.
type TimeoutError struct {
	Provider string
	Err      error
}

func (e *TimeoutError) Error() string {
	if e.Err == nil {
		return e.Provider + ": request timed out"
	}
	return fmt.Sprintf("%s: request timed out: %v", e.Provider, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// ProviderError reports any other provider failure.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s error: %s: %v", e.Provider, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is reports whether target is ErrProvider.
func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// StageError carries the failing stage of an aborted pipeline run.
// The originating error is preserved for errors.Is and errors.As.
type StageError struct {
	Pipeline string
	Stage    StageID
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline %s: stage %s: %v", e.Pipeline, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
