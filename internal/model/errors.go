package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the crawl error taxonomy.
// Typed errors below unwrap to one of these so callers can branch with errors.Is.
var (
	// ErrInvalidURL is returned when a URL lacks a scheme or host, or does not parse.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrHTTPStatus is wrapped by HTTPStatusError for any non-200 response.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrTransport is wrapped by TransportError for connection-level failures.
	ErrTransport = errors.New("transport failure")

	// ErrInvalidDepth is returned when a crawl is started with a negative max depth.
	ErrInvalidDepth = errors.New("invalid max depth: must be non-negative")
)

// ValidationError reports a malformed URL.
type ValidationError struct {
	// URL is the offending input, verbatim.
	URL string

	// Reason is a short human-readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid URL %q", e.URL)
	}
	return fmt.Sprintf("invalid URL %q: %s", e.URL, e.Reason)
}

// Unwrap returns ErrInvalidURL.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidURL
}

// HTTPStatusError reports a response whose status code was not 200.
type HTTPStatusError struct {
	URL    string
	Status int
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: HTTP status %d", e.URL, e.Status)
}

// Unwrap returns ErrHTTPStatus.
func (e *HTTPStatusError) Unwrap() error {
	return ErrHTTPStatus
}

// TransportError reports a failure below the HTTP layer: DNS, refused
// connections, timeouts, protocol violations or body read errors.
type TransportError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.URL, e.Err)
}

// Unwrap exposes both ErrTransport and the underlying cause, so that
// errors.Is(err, context.DeadlineExceeded) keeps working.
func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}
