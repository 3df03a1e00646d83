package event

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/sessionguard/core/logger"
)

// Publisher hands events to a transport. It has no lifecycle.
//
//	publisher := event.NewPublisher(transport)
//	err := publisher.Publish(ctx, UserCreated{Email: "user@example.com"})
type Publisher struct {
	transport PublisherTransport
	logger    *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger for the publisher.
func WithPublisherLogger(l *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPublisher creates a publisher over transport.
func NewPublisher(transport PublisherTransport, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		transport: transport,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish dispatches payload under its event name.
// With SyncTransport it blocks until every handler returns.
func (p *Publisher) Publish(ctx context.Context, payload any) error {
	evt := NewEvent(payload)
	p.logger.DebugContext(ctx, "publishing event",
		logger.Event(evt.Name),
		slog.String("event_id", evt.ID))

	if err := p.transport.Dispatch(ctx, evt.Name, evt.Payload); err != nil {
		p.logger.ErrorContext(ctx, "event dispatch failed",
			logger.Event(evt.Name),
			slog.String("event_id", evt.ID),
			logger.Error(err))
		return err
	}
	return nil
}
