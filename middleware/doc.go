// Package middleware provides http.RoundTripper middleware for the API client.
//
// Middleware wraps a RoundTripper, and Chain composes them with the first
// argument outermost:
//
//	client := &http.Client{
//		Transport: middleware.Chain(http.DefaultTransport,
//			middleware.RequestID(),
//			middleware.Logging(log),
//			middleware.Intercept(responseHandler),
//			middleware.Auth(provider),
//		),
//	}
//
// Auth copies headers from a provider onto a clone of the request, so callers'
// requests are never mutated. Intercept hands every completed response to a
// ResponseHandler in completion order. RequestID sets X-Request-ID when absent
// and exposes it through GetRequestID. Logging writes one record per call
// with method, path, status and latency, and redacts Authorization, Cookie and
// X-Api-Key when header logging is enabled.
package middleware
