package middleware

import (
	"context"
	"net/http"
)

// ResponseHandler observes completed responses.
type ResponseHandler interface {
	Handle(ctx context.Context, resp *http.Response)
}

// Intercept passes every completed response to h before returning it.
// Transport errors are returned untouched.
func Intercept(h ResponseHandler) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(r)
			if err != nil {
				return resp, err
			}
			h.Handle(r.Context(), resp)
			return resp, nil
		})
	}
}
