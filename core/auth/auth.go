// Package auth builds request options (headers) for calls to the platform API.
//
// The Authorization header is derived from the stored session token and two
// runtime flags read from the hosting environment at call time.
package auth

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/sessionguard/core/session"
)

// HeaderAuthorization is the header carrying the bearer token.
const HeaderAuthorization = "Authorization"

// Flags are runtime switches owned by the hosting environment.
type Flags struct {
	// NoAuthHeader disables the Authorization header (cookie-based deployments).
	NoAuthHeader bool `env:"NO_AUTH_HEADER" envDefault:"false"`
	// PublicAccessOnAccount marks the account as publicly browsable.
	PublicAccessOnAccount bool `env:"PUBLIC_ACCESS_ON_ACCOUNT" envDefault:"false"`
}

// FlagsFunc returns the current flags. It is called on every request.
type FlagsFunc func() Flags

// StaticFlags returns a FlagsFunc that always reports f.
func StaticFlags(f Flags) FlagsFunc {
	return func() Flags { return f }
}

// Headers returns the request headers for token under flags.
// Authorization is omitted when the token is empty or either flag is set.
func Headers(token string, flags Flags) http.Header {
	h := make(http.Header)
	if token == "" || flags.NoAuthHeader || flags.PublicAccessOnAccount {
		return h
	}
	h.Set(HeaderAuthorization, "Bearer "+token)
	return h
}

// Provider supplies request headers from the current session state.
type Provider struct {
	store session.Store
	flags FlagsFunc
}

// NewProvider binds store and flags. A nil flags func means all flags are off.
func NewProvider(store session.Store, flags FlagsFunc) *Provider {
	if flags == nil {
		flags = StaticFlags(Flags{})
	}
	return &Provider{store: store, flags: flags}
}

// Headers reads the stored token and returns the headers for it.
// Store errors are treated as "no token".
func (p *Provider) Headers(ctx context.Context) http.Header {
	token, err := p.store.Get(ctx, session.KeyToken)
	if err != nil {
		token = ""
	}
	return Headers(token, p.flags())
}

// Flags returns the flags as currently reported.
func (p *Provider) Flags() Flags {
	return p.flags()
}
