package refresher

import "errors"

var (
	// ErrRefreshFailed is returned when the refresh endpoint answers with a non-2xx status.
	ErrRefreshFailed = errors.New("refresher: token refresh failed")
	// ErrEmptyToken is returned when the refresh response carries no token.
	ErrEmptyToken = errors.New("refresher: refresh response has no token")
	// ErrNoAccount is returned when no account ID is available for the refresh call.
	ErrNoAccount = errors.New("refresher: no account id")
)
