// Package session holds the console's client-side session state.
//
// The state is a handful of string values kept in a Store: the bearer token,
// the epoch-millis time it was stored (lastTokenSetTime), the account and
// user identity, and the session timeout configured for the account. Two more
// keys carry login error messages that an external authentication UI reads.
//
// # Atomic Token Replacement
//
// A token refresh must overwrite both the token value and lastTokenSetTime.
// SaveToken writes them through a single Store.SetMany call, so readers never
// observe a new token with an old timestamp:
//
//	err := session.SaveToken(ctx, store, session.Token{
//		Value: newToken,
//		SetAt: time.Now(),
//	})
//
// # Stores
//
// MemoryStore keeps values in process memory. A Redis-backed implementation
// lives in integration/database/redis. Any type implementing Store works:
//
//	type Store interface {
//		Get(ctx context.Context, key string) (string, error)
//		SetMany(ctx context.Context, values map[string]string) error
//		Delete(ctx context.Context, keys ...string) error
//	}
//
// # Logout
//
// Clear removes the token and its timestamp. It is idempotent, so a forced
// logout on an already-cleared session has no visible effect.
package session
