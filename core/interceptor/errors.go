package interceptor

import "errors"

var (
	// ErrMalformedBody is returned when an error response body cannot be decoded.
	ErrMalformedBody = errors.New("interceptor: malformed response body")
	// ErrReadBody is returned when an error response body cannot be read.
	ErrReadBody = errors.New("interceptor: failed to read response body")
)
