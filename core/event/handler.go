package event

import (
	"context"
	"encoding/json"
	"fmt"
)

// HandlerFunc is a type-safe function signature for processing events of type T.
type HandlerFunc[T any] func(context.Context, T) error

// Handler processes events of one name.
type Handler interface {
	// EventName returns the event name this handler processes.
	EventName() string

	// Handle executes the handler with the given event payload.
	Handle(ctx context.Context, payload any) error
}

// NewHandler creates a handler with an explicit event name.
//
//	h := event.NewHandler("PROMISE_API_RESPONSE", func(ctx context.Context, evt Response) error {
//	    return process(ctx, evt)
//	})
func NewHandler[T any](eventName string, fn HandlerFunc[T]) Handler {
	return &handlerFuncWrapper[T]{name: eventName, fn: fn}
}

// NewHandlerFunc creates a handler whose event name is derived from T.
// When T implements Named, its EventName is used.
func NewHandlerFunc[T any](fn HandlerFunc[T]) Handler {
	var zero T
	return &handlerFuncWrapper[T]{name: NameOf(zero), fn: fn}
}

type handlerFuncWrapper[T any] struct {
	name string
	fn   HandlerFunc[T]
}

func (h *handlerFuncWrapper[T]) EventName() string { return h.name }

func (h *handlerFuncWrapper[T]) Handle(ctx context.Context, payload any) error {
	typed, err := unmarshalPayload[T](payload)
	if err != nil {
		return err
	}
	return h.fn(ctx, typed)
}

// unmarshalPayload converts payload to T. Raw JSON is decoded.
func unmarshalPayload[T any](payload any) (T, error) {
	var zero T

	if v, ok := payload.(T); ok {
		return v, nil
	}

	if data, ok := payload.([]byte); ok {
		var evt T
		if err := json.Unmarshal(data, &evt); err != nil {
			return zero, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		return evt, nil
	}

	return zero, fmt.Errorf("%w: %T", ErrUnexpectedPayload, payload)
}
