package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request.
type Kind int

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = iota + 1
	// KindHTTP means the server answered with a status of 400 or above.
	KindHTTP
	// KindDecode means the response body could not be decoded.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned by every failed Client call.
type Error struct {
	Kind    Kind
	Method  string
	Path    string
	Status  int
	Message string
	// SessionInvalidated is set when the failure cleared the stored credential.
	SessionInvalidated bool
	Cause              error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.Status, e.Message)
	case KindDecode:
		return fmt.Sprintf("decode %s %s response: %v", e.Method, e.Path, e.Cause)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Cause)
		}
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsNetwork reports whether err is a request that never got a response.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNetwork
}

// IsHTTP reports whether err carries a server status code.
func IsHTTP(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindHTTP
}

// IsSessionInvalidated reports whether err ended the current session.
func IsSessionInvalidated(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.SessionInvalidated
}

// StatusCode returns the HTTP status carried by err, or zero.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message returns the server-provided detail of err when present, else err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindHTTP && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
