package refresher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/sessionguard/core/auth"
	"github.com/dmitrymomot/sessionguard/core/logger"
	"github.com/dmitrymomot/sessionguard/core/session"
	"github.com/dmitrymomot/sessionguard/pkg/async"
)

// Refresher renews the session token while the user is active.
type Refresher struct {
	store  session.Store
	client TokenClient
	flags  auth.FlagsFunc
	clock  func() time.Time
	logger *slog.Logger
	window time.Duration

	mu        sync.Mutex
	inflight  *async.Future[string]
	debouncer *Debouncer
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithFlags sets the runtime flags source.
func WithFlags(flags auth.FlagsFunc) Option {
	return func(r *Refresher) {
		if flags != nil {
			r.flags = flags
		}
	}
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(r *Refresher) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithLogger sets the refresher logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Refresher) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDebounceWindow overrides DebounceWindow.
func WithDebounceWindow(d time.Duration) Option {
	return func(r *Refresher) {
		if d > 0 {
			r.window = d
		}
	}
}

// New creates a detached refresher. Call Start to react to activity.
func New(store session.Store, client TokenClient, opts ...Option) *Refresher {
	r := &Refresher{
		store:  store,
		client: client,
		flags:  auth.StaticFlags(auth.Flags{}),
		clock:  time.Now,
		logger: logger.Discard(),
		window: DebounceWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start attaches the refresher. Checks triggered by Activity run with ctx.
// Calling Start on an attached refresher rebinds it to ctx.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.debouncer != nil {
		r.debouncer.Stop()
	}
	r.debouncer = NewDebouncer(r.window, func() { r.Check(ctx) })
}

// Stop detaches the refresher. A refresh already in flight is not cancelled.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.debouncer != nil {
		r.debouncer.Stop()
		r.debouncer = nil
	}
}

// Activity records a user activity tick. It is ignored while detached.
func (r *Refresher) Activity() {
	r.mu.Lock()
	d := r.debouncer
	r.mu.Unlock()

	if d != nil {
		d.Tick()
	}
}

// Check refreshes the token when it is older than the refresh interval and no
// refresh is pending. It reports whether a refresh was started.
func (r *Refresher) Check(ctx context.Context) bool {
	if r.flags().PublicAccessOnAccount {
		return false
	}

	tok, err := session.LoadToken(ctx, r.store)
	if err != nil {
		if !errors.Is(err, session.ErrNoToken) {
			r.logger.WarnContext(ctx, "cannot read session token",
				logger.Component("refresher"),
				logger.Error(err))
		}
		return false
	}

	timeout, err := session.TimeoutMinutes(ctx, r.store)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		r.logger.WarnContext(ctx, "invalid session timeout, using minimum interval",
			logger.Component("refresher"),
			logger.Error(err))
	}

	interval := RefreshInterval(timeout)
	elapsed := ElapsedMinutes(tok.SetAt, r.clock())
	if elapsed <= interval {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inflight.IsComplete() {
		r.logger.DebugContext(ctx, "refresh already in flight",
			logger.Component("refresher"))
		return false
	}

	accountID := session.AccountID(ctx, r.store)
	r.logger.InfoContext(ctx, "refreshing session token",
		logger.Component("refresher"),
		logger.AccountID(accountID),
		logger.Minutes("elapsed_minutes", elapsed),
		logger.Minutes("interval_minutes", interval))

	r.inflight = async.Async(context.WithoutCancel(ctx), accountID, r.refresh)
	return true
}

// InFlight reports whether a refresh is pending.
func (r *Refresher) InFlight() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.inflight.IsComplete()
}

// Wait blocks until the pending refresh, if any, completes or ctx is done.
func (r *Refresher) Wait(ctx context.Context) error {
	r.mu.Lock()
	f := r.inflight
	r.mu.Unlock()

	if f == nil {
		return nil
	}
	select {
	case <-f.Done():
		_, err := f.Await()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Refresher) refresh(ctx context.Context, accountID string) (string, error) {
	start := time.Now()

	token, err := r.client.RefreshToken(ctx, accountID)
	if err != nil {
		r.logger.WarnContext(ctx, "token refresh failed",
			logger.Component("refresher"),
			logger.AccountID(accountID),
			logger.Error(err))
		return "", err
	}
	if token == "" {
		return "", ErrEmptyToken
	}

	if err := session.SaveToken(ctx, r.store, session.Token{Value: token, SetAt: r.clock()}); err != nil {
		r.logger.ErrorContext(ctx, "failed to persist refreshed token",
			logger.Component("refresher"),
			logger.Error(err))
		return "", err
	}

	attrs := []any{logger.Component("refresher"), logger.AccountID(accountID), logger.Elapsed(start)}
	if exp, ok := session.TokenExpiry(token); ok {
		attrs = append(attrs, slog.Time("expires_at", exp))
	}
	r.logger.InfoContext(ctx, "session token refreshed", attrs...)
	return token, nil
}
