package session

import "context"

// Storage keys shared with other parts of the console. Names are case-sensitive.
const (
	KeyAccountID        = "acctId"
	KeyToken            = "token"
	KeyLastTokenSetTime = "lastTokenSetTime"
	KeyUsername         = "username"
	KeySessionTimeout   = "sessionTimeOutInMinutes"

	// Messages surfaced here are read by the external login UI.
	KeyNotWhitelistedIPMessage = "NOT_WHITELISTED_IP_MESSAGE"
	KeyUnauthorizedMessage     = "UNAUTHORIZED"
)

// Store is client-side session storage with whole-value replace semantics.
// Implementations must handle concurrent access safely.
type Store interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// SetMany writes all values in one atomic step.
	SetMany(ctx context.Context, values map[string]string) error
	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
