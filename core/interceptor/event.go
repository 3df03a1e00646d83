package interceptor

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/sessionguard/core/event"
)

// PromiseAPIResponseEvent is the name under which out-of-band responses are dispatched.
const PromiseAPIResponseEvent = "PROMISE_API_RESPONSE"

// PromiseAPIResponse routes a response obtained outside the shared client
// through the same Handler.
type PromiseAPIResponse struct {
	Response *http.Response
}

// EventName implements event.Named.
func (PromiseAPIResponse) EventName() string { return PromiseAPIResponseEvent }

// EventHandler returns an event handler that feeds dispatched responses to h.
func (h *Handler) EventHandler() event.Handler {
	return event.NewHandlerFunc(func(ctx context.Context, evt PromiseAPIResponse) error {
		h.Handle(ctx, evt.Response)
		return nil
	})
}
