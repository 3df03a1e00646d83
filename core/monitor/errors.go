package monitor

import "errors"

var (
	// ErrSinkFailed is returned when the backend rejects an event.
	ErrSinkFailed = errors.New("monitor: sink failed")
	// ErrNoEndpoint is returned when an HTTP sink has no endpoint.
	ErrNoEndpoint = errors.New("monitor: no endpoint configured")
)
