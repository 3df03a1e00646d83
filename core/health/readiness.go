package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessionguard/core/logger"
)

// ErrNotReady wraps the first failing dependency check.
var ErrNotReady = errors.New("health: dependency not ready")

// CheckFunc probes one dependency.
type CheckFunc = func(context.Context) error

// Check runs fns in order and stops at the first failure.
func Check(ctx context.Context, fns ...CheckFunc) error {
	for _, f := range fns {
		if f == nil {
			continue
		}
		if err := f(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrNotReady, err)
		}
	}
	return nil
}

// Readiness answers "READY" when every check passes and 503 otherwise.
func Readiness(log *slog.Logger, fns ...CheckFunc) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := Check(r.Context(), fns...); err != nil {
			log.ErrorContext(r.Context(), "Readiness check failed", logger.Error(err))
			writeText(w, http.StatusServiceUnavailable, "NOT READY")
			return
		}
		writeText(w, http.StatusOK, "READY")
	}
}
