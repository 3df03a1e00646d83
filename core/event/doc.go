// Package event provides type-safe in-process event dispatch.
//
// Handlers are created from typed functions. NewHandlerFunc derives the event
// name from the payload type (or its EventName method when it implements
// Named), NewHandler takes the name explicitly:
//
//	type PromiseAPIResponse struct{ Response *http.Response }
//
//	func (PromiseAPIResponse) EventName() string { return "PROMISE_API_RESPONSE" }
//
//	transport := event.NewSyncTransport([]event.Handler{
//		event.NewHandlerFunc(func(ctx context.Context, evt PromiseAPIResponse) error {
//			return handle(ctx, evt.Response)
//		}),
//	})
//	publisher := event.NewPublisher(transport, event.WithPublisherLogger(log))
//
//	err := publisher.Publish(ctx, PromiseAPIResponse{Response: resp})
//
// # Transport
//
// SyncTransport runs every handler for an event in the caller's goroutine, in
// registration order. All handler errors are joined with errors.Join, and a
// panicking handler is converted into an error wrapping ErrHandlerPanic so the
// remaining handlers still run. WithStrict turns dispatch of an event with no
// handlers into ErrNoHandlers.
//
// Payloads may be the handler's type or raw JSON bytes, which are decoded into
// the handler's type before invocation.
package event
