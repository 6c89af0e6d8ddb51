package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors surfaced synchronously to callers. Transport maps them to
// HTTP 400 and 404 respectively.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
)

// PushError is a status-coded failure returned by the push transport for a
// single subscription. It is always recovered locally by the fan-out engine.
type PushError struct {
	StatusCode int
}

func (e *PushError) Error() string {
	return fmt.Sprintf("push endpoint returned status %d", e.StatusCode)
}

// Gone reports whether the endpoint no longer exists and the subscription
// should be deactivated.
func (e *PushError) Gone() bool {
	return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone
}
