package async

import "errors"

var (
	// ErrTimeout is returned by AwaitWithTimeout when the computation is still running.
	ErrTimeout = errors.New("async: timeout waiting for result")
	// ErrPanic is returned when the computation panicked.
	ErrPanic = errors.New("async: computation panicked")
)
