// Package stubgateway is an in-process stand-in for the platform gateway used
// in development and end-to-end tests. It issues HS256 session tokens at the
// refresh endpoint and serves scripted error responses.
package stubgateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default scripted routes.
const (
	PathOK                    = "/ng/api/ok"
	PathUnauthorized          = "/ng/api/errors/unauthorized"
	PathNotWhitelisted        = "/ng/api/errors/not-whitelisted"
	PathBadRequestWhitelisted = "/ng/api/errors/bad-request-not-whitelisted"
	PathBadRequestAuth        = "/ng/api/errors/bad-request-unauthorized"
	PathRateLimited           = "/ng/api/errors/rate-limited"
	PathPlainUnauthorized     = "/ng/api/errors/plain-unauthorized"
	PathMalformed             = "/ng/api/errors/malformed"
)

var (
	// ErrInvalidToken is returned when a bearer token fails validation.
	ErrInvalidToken = errors.New("stubgateway: invalid token")
	// ErrAccountMismatch is returned when routingId does not match the token account.
	ErrAccountMismatch = errors.New("stubgateway: account mismatch")
)

// Script is a canned response.
type Script struct {
	Status      int
	ContentType string
	Body        string
}

// Claims are the session token claims.
type Claims struct {
	AccountID string `json:"accountId"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// Gateway is an http.Handler.
type Gateway struct {
	secret      []byte
	ttl         time.Duration
	refreshPath string
	now         func() time.Time
	scripts     map[string]Script
	mux         *http.ServeMux
	refreshes   atomic.Int64
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTTL sets the lifetime of issued tokens.
func WithTTL(ttl time.Duration) Option {
	return func(g *Gateway) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithRefreshPath sets the refresh endpoint path.
func WithRefreshPath(path string) Option {
	return func(g *Gateway) {
		if path != "" {
			g.refreshPath = "/" + strings.TrimLeft(path, "/")
		}
	}
}

// WithClock replaces time.Now for token timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// WithScript adds or replaces a scripted GET route.
func WithScript(path string, s Script) Option {
	return func(g *Gateway) { g.scripts[path] = s }
}

// New creates a gateway signing tokens with secret.
func New(secret []byte, opts ...Option) *Gateway {
	g := &Gateway{
		secret:      secret,
		ttl:         time.Hour,
		refreshPath: "/gateway/ng/api/user/refreshToken",
		now:         time.Now,
		mux:         http.NewServeMux(),
		scripts: map[string]Script{
			PathOK:                    jsonScript(http.StatusOK, `{"status":"SUCCESS"}`),
			PathUnauthorized:          jsonScript(http.StatusUnauthorized, authBody("UNAUTHORIZED", "Token is not valid")),
			PathNotWhitelisted:        jsonScript(http.StatusUnauthorized, authBody("NOT_WHITELISTED_IP", "Current IP Address is not whitelisted")),
			PathBadRequestWhitelisted: jsonScript(http.StatusBadRequest, authBody("NOT_WHITELISTED_IP", "Current IP Address is not whitelisted")),
			PathBadRequestAuth:        jsonScript(http.StatusBadRequest, authBody("UNAUTHORIZED", "Session expired")),
			PathRateLimited:           jsonScript(http.StatusTooManyRequests, `{"message":"Rate limit exceeded"}`),
			PathPlainUnauthorized:     {Status: http.StatusUnauthorized, ContentType: "text/html", Body: "<html>Unauthorized</html>"},
			PathMalformed:             jsonScript(http.StatusUnauthorized, `{"responseMessages":`),
		},
	}
	for _, opt := range opts {
		opt(g)
	}

	g.mux.HandleFunc("GET "+g.refreshPath, g.refresh)
	for path, s := range g.scripts {
		g.mux.HandleFunc("GET "+path, scriptHandler(s))
	}
	return g
}

// ServeHTTP implements http.Handler.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mux.ServeHTTP(w, r)
}

// RefreshPath returns the refresh endpoint path.
func (g *Gateway) RefreshPath() string { return g.refreshPath }

// Refreshes returns how many tokens the refresh endpoint has issued.
func (g *Gateway) Refreshes() int64 { return g.refreshes.Load() }

// IssueToken signs a token for the account. Every token carries a fresh jti.
func (g *Gateway) IssueToken(accountID, username string) (string, error) {
	now := g.now()
	claims := Claims{
		AccountID: accountID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

// ParseToken validates a token issued by the gateway.
func (g *Gateway) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

func (g *Gateway) refresh(w http.ResponseWriter, r *http.Request) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		writeJSON(w, http.StatusUnauthorized, authBody("UNAUTHORIZED", "Missing token"))
		return
	}

	claims, err := g.ParseToken(raw)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, authBody("UNAUTHORIZED", "Token is not valid"))
		return
	}
	if routing := r.URL.Query().Get("routingId"); routing != claims.AccountID {
		writeJSON(w, http.StatusBadRequest, authBody("UNAUTHORIZED", ErrAccountMismatch.Error()))
		return
	}

	token, err := g.IssueToken(claims.AccountID, claims.Username)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, `{"status":"ERROR"}`)
		return
	}
	g.refreshes.Add(1)

	body, _ := json.Marshal(map[string]string{"status": "SUCCESS", "resource": token})
	writeJSON(w, http.StatusOK, string(body))
}
