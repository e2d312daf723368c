package analyzer

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/xful-bep/crysknife/internal/fetch"
)

const (
	serviceGitHub = "GitHub"
	serviceNPM    = "NPM"
)

var (
	// ErrRateLimited matches every *RateLimitError via errors.Is.
	ErrRateLimited = errors.New("rate limited")
	// ErrDecodeFailed is returned when pasted base64 yields no leak document.
	ErrDecodeFailed = errors.New("failed to decode base64 content: no leak document found")
	// ErrUnsupportedKind is returned for an unknown analysis kind.
	ErrUnsupportedKind = errors.New("unsupported analysis type")
	// ErrEmptyQuery is returned for a blank query.
	ErrEmptyQuery = errors.New("query is empty")
)

// RateLimitError is an upstream 403/429. It is never retried.
type RateLimitError struct {
	Service string
	Status  int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s API rate limit exceeded. Please wait before trying again. (Status: %d)", e.Service, e.Status)
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// UpstreamError is any other non-success status.
type UpstreamError struct {
	Service string
	Status  int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: %d", e.Service, e.Status)
}

// MalformedInputError is user-supplied content that is not valid JSON.
type MalformedInputError struct {
	Err error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("invalid JSON format: %v", e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// NetworkError is a request that never got a response.
type NetworkError struct {
	Service string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Service == serviceNPM {
		return fmt.Sprintf("could not reach the NPM registry (%v); account lookups are often blocked by network or CORS restrictions, try again from another network", e.Err)
	}
	return fmt.Sprintf("could not reach the %s API: %v", e.Service, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// rateLimited reports whether status counts as rate limiting for service.
// GitHub answers an exhausted quota with 403; npm uses 429.
func rateLimited(service string, status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return service == serviceGitHub && status == http.StatusForbidden
}

// classify maps a fetch failure to the analyzer error taxonomy. 404s must be
// handled by the caller before this.
func classify(service string, err error) error {
	var se *fetch.StatusError
	if errors.As(err, &se) {
		if rateLimited(service, se.StatusCode) {
			return &RateLimitError{Service: service, Status: se.StatusCode}
		}
		return &UpstreamError{Service: service, Status: se.StatusCode}
	}
	var ne *fetch.NetworkError
	if errors.As(err, &ne) {
		return &NetworkError{Service: service, Err: ne.Err}
	}
	return fmt.Errorf("%s API: %w", service, err)
}
