package event

import "context"

// PublisherTransport defines how events are dispatched to handlers.
type PublisherTransport interface {
	// Dispatch sends an event for processing.
	Dispatch(ctx context.Context, eventName string, payload any) error
}
