// Package health provides probes for the session pipeline's dependencies.
//
// Handlers:
//   - Liveness: process is running (no dependency checks)
//   - Readiness: all dependency checks pass
//
// Usage:
//
//	mux.HandleFunc("GET /health/live", health.Liveness)
//	mux.HandleFunc("GET /health/ready", health.Readiness(logger, redis.Healthcheck(client)))
//
// Dependency checks follow the func(context.Context) error signature and can
// also be evaluated directly with Check.
package health
