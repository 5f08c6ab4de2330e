package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport is matched by every network-level or non-2xx failure.
var ErrTransport = errors.New("transport failure")

// TransportError carries what the server sent back, if anything. StatusCode is
// zero when the request never got a response.
type TransportError struct {
	Method     string
	Path       string
	RequestID  string
	StatusCode int
	Header     http.Header
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s failed: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s failed with status code %d: %s", e.Method, e.Path, e.StatusCode, string(e.Body))
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// IsRateLimited reports whether err is a 429 from the API.
func IsRateLimited(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.StatusCode == http.StatusTooManyRequests
}
