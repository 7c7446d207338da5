package rest

import (
	"errors"
	"fmt"
)

// ErrNoToken is returned by token providers that have no session token yet.
var ErrNoToken = errors.New("no session token available")

// StatusError reports a non-2xx HTTP response. Status-code specific handling
// (e.g. redirect to login on 401) belongs to the caller, not the transport.
type StatusError struct {
	StatusCode int
	Msg        string
}

func (e *StatusError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Msg)
}

// APIError reports a business failure signalled inside a 2xx envelope
// (code != "200").
type APIError struct {
	Code string
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s: %s", e.Code, e.Msg)
}

// MalformedResponseError reports a response that decoded but failed a sanity
// check: a missing payload, a bad field format, an impossible value. It is
// always surfaced to the caller, never swallowed.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed response: " + e.Reason
}

// Malformed builds a MalformedResponseError with a formatted reason.
func Malformed(format string, args ...interface{}) error {
	return &MalformedResponseError{Reason: fmt.Sprintf(format, args...)}
}

// IsMalformed reports whether err is a MalformedResponseError.
func IsMalformed(err error) bool {
	var m *MalformedResponseError
	return errors.As(err, &m)
}
