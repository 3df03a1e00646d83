package event

import "errors"

var (
	// ErrNoHandlers is returned in strict mode when no handlers are registered for an event.
	ErrNoHandlers = errors.New("no handlers registered for event")

	// ErrHandlerPanic wraps a panic recovered from a handler.
	ErrHandlerPanic = errors.New("event handler panicked")

	// ErrUnexpectedPayload is returned when a payload cannot be converted to the handler type.
	ErrUnexpectedPayload = errors.New("unexpected event payload")
)
