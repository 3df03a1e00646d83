package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is the stored bearer token and the moment it was stored.
type Token struct {
	Value string
	SetAt time.Time
}

// IsZero reports whether no token value is present.
func (t Token) IsZero() bool {
	return t.Value == ""
}

// Age returns how long ago the token was stored.
func (t Token) Age(now time.Time) time.Duration {
	return now.Sub(t.SetAt)
}

// LoadToken reads the token and its lastTokenSetTime (epoch millis).
// A token without a timestamp is returned with a zero SetAt.
func LoadToken(ctx context.Context, store Store) (Token, error) {
	value, err := store.Get(ctx, KeyToken)
	if errors.Is(err, ErrNotFound) || (err == nil && value == "") {
		return Token{}, ErrNoToken
	}
	if err != nil {
		return Token{}, err
	}

	raw, err := store.Get(ctx, KeyLastTokenSetTime)
	if errors.Is(err, ErrNotFound) {
		return Token{Value: value}, nil
	}
	if err != nil {
		return Token{}, err
	}

	millis, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return Token{}, errors.Join(ErrInvalidTimestamp, err)
	}

	return Token{Value: value, SetAt: time.UnixMilli(millis)}, nil
}

// SaveToken replaces the token and lastTokenSetTime in one write.
func SaveToken(ctx context.Context, store Store, t Token) error {
	if t.IsZero() {
		return ErrNoToken
	}
	err := store.SetMany(ctx, map[string]string{
		KeyToken:            t.Value,
		KeyLastTokenSetTime: strconv.FormatInt(t.SetAt.UnixMilli(), 10),
	})
	if err != nil {
		return errors.Join(ErrSaveToken, err)
	}
	return nil
}

// Clear removes the token and its timestamp. Calling it on an empty store is a no-op.
func Clear(ctx context.Context, store Store) error {
	return store.Delete(ctx, KeyToken, KeyLastTokenSetTime)
}

// TimeoutMinutes returns the configured session timeout in minutes.
func TimeoutMinutes(ctx context.Context, store Store) (float64, error) {
	raw, err := store.Get(ctx, KeySessionTimeout)
	if err != nil {
		return 0, err
	}
	m, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, raw)
	}
	return m, nil
}

// AccountID returns the stored account identifier or "".
func AccountID(ctx context.Context, store Store) string {
	return lookup(ctx, store, KeyAccountID)
}

// Username returns the stored username or "".
func Username(ctx context.Context, store Store) string {
	return lookup(ctx, store, KeyUsername)
}

func lookup(ctx context.Context, store Store, key string) string {
	v, err := store.Get(ctx, key)
	if err != nil {
		return ""
	}
	return v
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// Opaque tokens report false.
func TokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
