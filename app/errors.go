package app

import "errors"

var (
	ErrUnknownStore = errors.New("app: unknown session store")
	ErrNilOption    = errors.New("app: option value cannot be nil")
	ErrNoBaseURL    = errors.New("app: API base URL is required")
)
