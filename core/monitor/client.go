package monitor

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/sessionguard/core/logger"
)

// Sink receives events accepted by the client.
type Sink interface {
	Send(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev Event) error

// Send implements Sink.
func (f SinkFunc) Send(ctx context.Context, ev Event) error { return f(ctx, ev) }

// OnErrorFunc inspects an event before delivery. Returning false drops it.
type OnErrorFunc func(ev *Event) bool

// Reporter is the contract consumed by other packages.
type Reporter interface {
	Notify(ctx context.Context, err error, fn func(*Event))
}

// Client delivers error events to a Sink after running OnError filters.
type Client struct {
	sink       Sink
	onError    []OnErrorFunc
	appVersion string
	logger     *slog.Logger
}

var _ Reporter = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithOnError appends a filter. ShouldIgnore is always installed first.
func WithOnError(fn OnErrorFunc) Option {
	return func(c *Client) {
		if fn != nil {
			c.onError = append(c.onError, fn)
		}
	}
}

// WithAppVersion stamps every event with version.
func WithAppVersion(version string) Option {
	return func(c *Client) { c.appVersion = version }
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client delivering to sink.
func New(sink Sink, opts ...Option) *Client {
	c := &Client{
		sink:   sink,
		logger: logger.Discard(),
		onError: []OnErrorFunc{
			func(ev *Event) bool { return !ShouldIgnore(*ev) },
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify reports err. fn may set severity, user and metadata before filters run.
// Delivery failures are logged, never returned.
func (c *Client) Notify(ctx context.Context, err error, fn func(*Event)) {
	if err == nil {
		return
	}

	ev := NewEvent(err)
	ev.AppVersion = c.appVersion
	if fn != nil {
		fn(&ev)
	}

	for _, filter := range c.onError {
		if !filter(&ev) {
			c.logger.DebugContext(ctx, "error report suppressed",
				logger.Component("monitor"),
				logger.Error(err))
			return
		}
	}

	if c.sink == nil {
		return
	}
	if sendErr := c.sink.Send(ctx, ev); sendErr != nil {
		c.logger.WarnContext(ctx, "error report not delivered",
			logger.Component("monitor"),
			logger.Errors(err, sendErr))
	}
}
