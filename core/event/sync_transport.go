package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/sessionguard/core/logger"
)

// SyncTransport runs handlers in the caller's goroutine, in registration order.
// Handler errors are aggregated with errors.Join and panics are recovered.
type SyncTransport struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	strict   bool
	logger   *slog.Logger
}

// SyncOption configures a SyncTransport.
type SyncOption func(*SyncTransport)

// WithStrict makes Dispatch fail with ErrNoHandlers for unknown events.
func WithStrict() SyncOption {
	return func(t *SyncTransport) { t.strict = true }
}

// WithTransportLogger sets the logger used for dispatch diagnostics.
func WithTransportLogger(l *slog.Logger) SyncOption {
	return func(t *SyncTransport) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewSyncTransport creates a synchronous transport with the given handlers.
func NewSyncTransport(handlers []Handler, opts ...SyncOption) *SyncTransport {
	t := &SyncTransport{
		handlers: make(map[string][]Handler),
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.Register(handlers...)
	return t
}

// Register adds handlers. Nil handlers are skipped.
func (t *SyncTransport) Register(handlers ...Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, h := range handlers {
		if h == nil {
			continue
		}
		t.handlers[h.EventName()] = append(t.handlers[h.EventName()], h)
	}
}

// Dispatch implements PublisherTransport.
func (t *SyncTransport) Dispatch(ctx context.Context, eventName string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.RLock()
	handlers := append([]Handler(nil), t.handlers[eventName]...)
	t.mu.RUnlock()

	if len(handlers) == 0 {
		t.logger.DebugContext(ctx, "no handlers for event", logger.Event(eventName))
		if t.strict {
			return fmt.Errorf("%w: %s", ErrNoHandlers, eventName)
		}
		return nil
	}

	var errs []error
	for _, h := range handlers {
		if err := safeHandle(ctx, h, payload); err != nil {
			errs = append(errs, fmt.Errorf("handler %s failed: %w", h.EventName(), err))
		}
	}
	return errors.Join(errs...)
}

func safeHandle(ctx context.Context, h Handler, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h.Handle(ctx, payload)
}
