package ogc

import (
	"errors"
	"fmt"
)

// ErrClient is the base error every failure from this package wraps.
// Callers can match it broadly with errors.Is, or match one of the
// specific sentinels below.
var ErrClient = errors.New("ogc client")

var (
	// ErrServerNotFound indicates the server is unreachable (DNS failure,
	// connection refused, or timeout while connecting).
	ErrServerNotFound = fmt.Errorf("%w: server unreachable", ErrClient)
	// ErrNotFound indicates an HTTP 404 for a resource whose kind is not
	// yet known; operations narrow it to one of the sentinels below.
	ErrNotFound = fmt.Errorf("%w: resource not found", ErrClient)
	// ErrCollectionNotFound indicates the collection does not exist.
	ErrCollectionNotFound = fmt.Errorf("%w: collection not found", ErrClient)
	// ErrProcessNotFound indicates the process does not exist.
	ErrProcessNotFound = fmt.Errorf("%w: process not found", ErrClient)
	// ErrJobNotFound indicates the job does not exist or has expired.
	ErrJobNotFound = fmt.Errorf("%w: job not found", ErrClient)
	// ErrExecutionFailed indicates a process rejected its inputs or
	// failed while running.
	ErrExecutionFailed = fmt.Errorf("%w: process execution failed", ErrClient)
	// ErrTimeout indicates a request or job poll exceeded its deadline.
	ErrTimeout = fmt.Errorf("%w: timed out", ErrClient)
)

// maxErrorBody bounds how much of an upstream error response is carried
// in error messages.
const maxErrorBody = 300

// HTTPError is the catch-all for non-2xx responses that do not map to a
// more specific sentinel. It carries the status code and a truncated
// copy of the response body.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned HTTP %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("server returned HTTP %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPError) Unwrap() error { return ErrClient }

func truncateBody(body string) string {
	if len(body) > maxErrorBody {
		return body[:maxErrorBody]
	}
	return body
}
