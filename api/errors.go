package api

import (
	"errors"
	"fmt"

	"little_library/library"
)

var (
	// ErrNetworkUnavailable wraps transport failures (no HTTP response).
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrValidationFailed   = library.ErrValidationFailed
)

// RequestFailed is returned for any non-2xx response.
type RequestFailed struct {
	Op     string
	Status int
	Body   string
}

func (e *RequestFailed) Error() string {
	body := e.Body
	if body == "" {
		body = "no response body"
	}
	return fmt.Sprintf("%s failed (%d): %s", e.Op, e.Status, body)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var rf *RequestFailed
	if errors.As(err, &rf) {
		return rf.Status
	}
	return 0
}
