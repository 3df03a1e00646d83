package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/sessionguard/core/logger"
)

// LogSink writes events to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink logging at error level.
func NewLogSink(l *slog.Logger) *LogSink {
	if l == nil {
		l = slog.Default()
	}
	return &LogSink{logger: l}
}

// Send implements Sink.
func (s *LogSink) Send(ctx context.Context, ev Event) error {
	attrs := []any{
		logger.Component("monitor"),
		slog.String("severity", string(ev.Severity)),
		logger.Username(ev.User.Name),
		logger.AccountID(accountOf(ev)),
	}
	if len(ev.Errors) > 0 {
		attrs = append(attrs,
			slog.String("error_class", ev.Errors[0].ErrorClass),
			slog.String("error_message", ev.Errors[0].ErrorMessage))
	}
	if len(ev.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", ev.Metadata))
	}
	s.logger.ErrorContext(ctx, "client error reported", attrs...)
	return nil
}

func accountOf(ev Event) string {
	if v, ok := ev.Metadata["accountId"].(string); ok {
		return v
	}
	return ""
}

// HTTPSink posts events as JSON to a monitoring endpoint.
type HTTPSink struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPSink returns a sink posting to endpoint. apiKey may be empty.
func NewHTTPSink(endpoint, apiKey string, timeout time.Duration) *HTTPSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSink{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Send implements Sink.
func (s *HTTPSink) Send(ctx context.Context, ev Event) error {
	if s.endpoint == "" {
		return ErrNoEndpoint
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrSinkFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSinkFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSinkFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrSinkFailed, resp.StatusCode)
	}
	return nil
}
