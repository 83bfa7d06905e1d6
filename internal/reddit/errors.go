package reddit

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds returned by the session. Callers discriminate with errors.Is.
var (
	ErrAuthentication    = errors.New("authentication failed")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrRateLimited       = errors.New("rate limited")
	ErrServer            = errors.New("server error")
	ErrUnexpectedStatus  = errors.New("unexpected status")
	ErrTransport         = errors.New("transport error")
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError is a non-success HTTP response from Reddit.
type APIError struct {
	Kind       error
	StatusCode int
	URL        string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v: %s (status %d)", e.Kind, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%v: %s (status %d): %s", e.Kind, e.URL, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// kindForStatus maps a response status to an error kind. A redirect is how
// Reddit answers for a subreddit that does not exist.
func kindForStatus(status int) error {
	switch {
	case status >= 300 && status < 400:
		return ErrNotFound
	case status == 401:
		return ErrAuthentication
	case status == 403:
		return ErrForbidden
	case status == 404:
		return ErrNotFound
	case status == 429:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	default:
		return ErrUnexpectedStatus
	}
}
