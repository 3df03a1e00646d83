package middleware

import (
	"context"
	"net/http"
)

// HeaderProvider returns headers to add to every outgoing request.
type HeaderProvider interface {
	Headers(ctx context.Context) http.Header
}

// Auth sets the provider's headers on a clone of each request.
// Headers already present on the request are left as they are.
func Auth(provider HeaderProvider) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			headers := provider.Headers(r.Context())
			if len(headers) == 0 {
				return next.RoundTrip(r)
			}

			r = r.Clone(r.Context())
			for k, vs := range headers {
				if r.Header.Get(k) != "" {
					continue
				}
				for _, v := range vs {
					r.Header.Add(k, v)
				}
			}
			return next.RoundTrip(r)
		})
	}
}
