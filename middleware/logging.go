package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrymomot/sessionguard/core/logger"
)

// LoggingConfig configures the outgoing request logger.
type LoggingConfig struct {
	// Logger receives the records (default: slog.Default())
	Logger *slog.Logger
	// LogHeaders adds request headers to each record
	LogHeaders bool
	// SensitiveHeaders are redacted when LogHeaders is set
	SensitiveHeaders []string
	// SlowRequestThreshold raises the level of slow calls to warn (0 disables)
	SlowRequestThreshold time.Duration
}

var defaultSensitiveHeaders = []string{"Authorization", "Cookie", "X-Api-Key"}

// Logging logs method, URL path, status and latency of each call.
func Logging(l *slog.Logger) Middleware {
	return LoggingWithConfig(LoggingConfig{Logger: l})
}

// LoggingWithConfig creates a logging middleware with custom configuration.
func LoggingWithConfig(cfg LoggingConfig) Middleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SensitiveHeaders == nil {
		cfg.SensitiveHeaders = defaultSensitiveHeaders
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			latency := time.Since(start)

			ctx := r.Context()
			attrs := []slog.Attr{
				logger.Method(r.Method),
				logger.URL(r.URL.Path),
				logger.Latency(latency),
			}
			if id, ok := GetRequestID(ctx); ok {
				attrs = append(attrs, logger.RequestID(id))
			}
			if cfg.LogHeaders {
				attrs = append(attrs, headersAttr(r.Header, cfg.SensitiveHeaders))
			}

			if err != nil {
				attrs = append(attrs, logger.Error(err))
				cfg.Logger.LogAttrs(ctx, slog.LevelError, "outgoing request failed", attrs...)
				return resp, err
			}

			attrs = append(attrs, logger.StatusCode(resp.StatusCode))
			level := slog.LevelInfo
			switch {
			case resp.StatusCode >= 500:
				level = slog.LevelError
			case resp.StatusCode >= 400:
				level = slog.LevelWarn
			case cfg.SlowRequestThreshold > 0 && latency > cfg.SlowRequestThreshold:
				level = slog.LevelWarn
			}
			cfg.Logger.LogAttrs(ctx, level, "outgoing request", attrs...)
			return resp, nil
		})
	}
}

func headersAttr(h http.Header, sensitive []string) slog.Attr {
	attrs := make([]slog.Attr, 0, len(h))
	for k := range h {
		v := h.Get(k)
		if slices.ContainsFunc(sensitive, func(s string) bool { return http.CanonicalHeaderKey(s) == k }) {
			v = "[REDACTED]"
		}
		attrs = append(attrs, slog.String(k, v))
	}
	return logger.Group("headers", attrs...)
}
