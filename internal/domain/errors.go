package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed is returned for any upstream failure: non-2xx status,
	// transport error, or a response that fails validation. Callers cannot
	// tell retryable failures from permanent ones.
	ErrRequestFailed = errors.New("request failed")

	// ErrNoData is returned when a required parameter is missing or out of
	// range, before any request is issued.
	ErrNoData = errors.New("no data")

	// ErrMalformedState is returned when persisted state cannot be decoded.
	ErrMalformedState = errors.New("malformed stored state")
)

// RequestError describes a non-2xx upstream response.
type RequestError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// Unwrap lets errors.Is match ErrRequestFailed.
func (e *RequestError) Unwrap() error {
	return ErrRequestFailed
}
