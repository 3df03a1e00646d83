package session

import "errors"

var (
	// ErrNotFound is returned by a Store when a key holds no value.
	ErrNotFound = errors.New("session: key not found")
	// ErrNoToken is returned when no bearer token is stored.
	ErrNoToken = errors.New("session: no token")
	// ErrInvalidTimestamp is returned when lastTokenSetTime is not epoch millis.
	ErrInvalidTimestamp = errors.New("session: invalid token timestamp")
	// ErrInvalidTimeout is returned when the stored session timeout is not a number.
	ErrInvalidTimeout = errors.New("session: invalid session timeout")
	// ErrSaveToken is returned when persisting a token fails.
	ErrSaveToken = errors.New("session: failed to save token")
)
