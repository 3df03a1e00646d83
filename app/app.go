package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sessionguard/core/auth"
	"github.com/dmitrymomot/sessionguard/core/event"
	"github.com/dmitrymomot/sessionguard/core/health"
	"github.com/dmitrymomot/sessionguard/core/interceptor"
	"github.com/dmitrymomot/sessionguard/core/logger"
	"github.com/dmitrymomot/sessionguard/core/monitor"
	"github.com/dmitrymomot/sessionguard/core/refresher"
	"github.com/dmitrymomot/sessionguard/core/session"
	"github.com/dmitrymomot/sessionguard/integration/database/redis"
	"github.com/dmitrymomot/sessionguard/middleware"
)

const (
	healthcheckInterval = 30 * time.Second
	shutdownTimeout     = 5 * time.Second
)

// App wires the session pipeline: header provider, response interceptor,
// token refresher and error reporting around one HTTP client.
type App struct {
	config Config
	logger *slog.Logger

	store       session.Store
	healthcheck func(context.Context) error
	closeStore  func() error

	flags     auth.FlagsFunc
	provider  *auth.Provider
	reporter  monitor.Reporter
	sink      monitor.Sink
	notifier  interceptor.Notifier
	redirect  func(context.Context)
	transport http.RoundTripper

	handler   *interceptor.Handler
	publisher *event.Publisher
	client    *http.Client
	refresher *refresher.Refresher

	logoutMu  sync.Mutex
	loggedOut bool
}

type Option func(*App) error

// New builds an App from cfg.
func New(cfg Config, opts ...Option) (*App, error) {
	if cfg.APIBaseURL == "" {
		return nil, ErrNoBaseURL
	}

	app := &App{
		config: cfg,
		logger: newLogger(cfg),
		flags:  auth.StaticFlags(cfg.Flags),
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.store == nil {
		if err := app.openStore(); err != nil {
			return nil, err
		}
	}
	if err := app.seed(context.Background()); err != nil {
		return nil, err
	}

	if app.reporter == nil {
		if app.sink == nil {
			app.sink = app.defaultSink()
		}
		app.reporter = monitor.New(app.sink,
			monitor.WithAppVersion(cfg.AppVersion),
			monitor.WithLogger(app.logger),
		)
	}
	if app.notifier == nil {
		app.notifier = interceptor.NotifierFunc(func(ctx context.Context, msg string) {
			app.logger.WarnContext(ctx, msg, logger.Component("notifier"))
		})
	}

	app.provider = auth.NewProvider(app.store, app.flags)
	app.handler = interceptor.NewHandler(interceptor.Context{
		Notifier: app.notifier,
		Logout:   app.Logout,
		Reporter: app.reporter,
		Store:    app.store,
	}, interceptor.WithLogger(app.logger))

	app.publisher = event.NewPublisher(
		event.NewSyncTransport([]event.Handler{app.handler.EventHandler()},
			event.WithTransportLogger(app.logger)),
		event.WithPublisherLogger(app.logger),
	)

	app.client = &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: middleware.Chain(app.transport,
			middleware.RequestID(),
			middleware.Logging(app.logger),
			middleware.Intercept(app.handler),
			middleware.Auth(app.provider),
		),
	}

	app.refresher = refresher.New(app.store,
		refresher.NewHTTPTokenClient(app.client, cfg.APIBaseURL, cfg.RefreshPath),
		refresher.WithFlags(app.flags),
		refresher.WithLogger(app.logger),
	)

	return app, nil
}

func (a *App) openStore() error {
	switch a.config.SessionStore {
	case "", StoreMemory:
		a.store = session.NewMemoryStore(nil)
	case StoreRedis:
		client, err := redis.Connect(context.Background(), a.config.Redis)
		if err != nil {
			return err
		}
		a.store = redis.NewSessionStore(client, a.config.Redis.KeyPrefix)
		a.healthcheck = redis.Healthcheck(client)
		a.closeStore = client.Close
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, a.config.SessionStore)
	}
	return nil
}

// seed writes the configured session state. Empty values are not written.
func (a *App) seed(ctx context.Context) error {
	values := map[string]string{}
	if a.config.AccountID != "" {
		values[session.KeyAccountID] = a.config.AccountID
	}
	if a.config.Username != "" {
		values[session.KeyUsername] = a.config.Username
	}
	if a.config.TimeoutMinutes > 0 {
		values[session.KeySessionTimeout] = strconv.FormatFloat(a.config.TimeoutMinutes, 'f', -1, 64)
	}
	if len(values) > 0 {
		if err := a.store.SetMany(ctx, values); err != nil {
			return err
		}
	}
	if a.config.Token != "" {
		return session.SaveToken(ctx, a.store, session.Token{Value: a.config.Token, SetAt: time.Now()})
	}
	return nil
}

func (a *App) defaultSink() monitor.Sink {
	if a.config.MonitorEndpoint != "" {
		return monitor.NewHTTPSink(a.config.MonitorEndpoint, a.config.MonitorAPIKey, a.config.HTTPTimeout)
	}
	return monitor.NewLogSink(a.logger)
}

// Client returns the HTTP client carrying the session pipeline.
func (a *App) Client() *http.Client { return a.client }

// Store returns the session store.
func (a *App) Store() session.Store { return a.store }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Refresher returns the token refresher.
func (a *App) Refresher() *refresher.Refresher { return a.refresher }

// Activity records a user activity tick.
func (a *App) Activity() { a.refresher.Activity() }

// DispatchPromiseResponse routes a response obtained outside Client through the interceptor.
func (a *App) DispatchPromiseResponse(ctx context.Context, resp *http.Response) error {
	return a.publisher.Publish(ctx, interceptor.PromiseAPIResponse{Response: resp})
}

// Login stores a new session token and re-arms Logout for the new session.
func (a *App) Login(ctx context.Context, token string) error {
	if err := session.SaveToken(ctx, a.store, session.Token{Value: token, SetAt: time.Now()}); err != nil {
		return err
	}

	a.logoutMu.Lock()
	a.loggedOut = false
	a.logoutMu.Unlock()

	a.logger.InfoContext(ctx, "session started",
		logger.Component("app"),
		logger.Action("login"))
	return nil
}

// Logout clears the session and calls the redirect hook. Only the first call
// per session has an effect; Login starts a new session.
func (a *App) Logout(ctx context.Context) {
	a.logoutMu.Lock()
	if a.loggedOut {
		a.logoutMu.Unlock()
		return
	}
	a.loggedOut = true
	a.logoutMu.Unlock()

	if err := session.Clear(ctx, a.store); err != nil {
		a.logger.ErrorContext(ctx, "failed to clear session",
			logger.Component("app"),
			logger.Error(err))
	}
	a.logger.InfoContext(ctx, "session ended",
		logger.Component("app"),
		logger.Action("logout"))

	if a.redirect != nil {
		a.redirect(ctx)
	}
}

// Ready reports whether the session store is reachable.
func (a *App) Ready(ctx context.Context) error {
	return health.Check(ctx, a.healthcheck, a.probeStore)
}

func (a *App) probeStore(ctx context.Context) error {
	_, err := a.store.Get(ctx, session.KeyAccountID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return err
	}
	return nil
}

// LoggedOut reports whether Logout has run.
func (a *App) LoggedOut() bool {
	a.logoutMu.Lock()
	defer a.logoutMu.Unlock()
	return a.loggedOut
}

// Run attaches the refresher and monitors the store until ctx is done.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.refresher.Start(ctx)
		<-ctx.Done()
		a.refresher.Stop()

		waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = a.refresher.Wait(waitCtx)
		return nil
	})

	if a.healthcheck != nil {
		g.Go(func() error {
			ticker := time.NewTicker(healthcheckInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := a.Ready(ctx); err != nil {
						a.logger.ErrorContext(ctx, "session store unhealthy",
							logger.Component("app"),
							logger.Error(err))
					}
				}
			}
		})
	}

	err := g.Wait()
	if a.closeStore != nil {
		if cerr := a.closeStore(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// newLogger uses the APP_ENV preset. LOG_LEVEL, when valid, overrides its level.
func newLogger(cfg Config) *slog.Logger {
	var opts []logger.Option
	var level slog.Level
	if cfg.LogLevel != "" && level.UnmarshalText([]byte(cfg.LogLevel)) == nil {
		opts = append(opts, logger.WithLevel(level))
	}
	return logger.ForEnv(cfg.Env, cfg.AppName, opts...)
}

func WithLogger(l *slog.Logger) Option {
	return func(app *App) error {
		if l == nil {
			return ErrNilOption
		}
		app.logger = l
		return nil
	}
}

func WithStore(store session.Store) Option {
	return func(app *App) error {
		if store == nil {
			return ErrNilOption
		}
		app.store = store
		return nil
	}
}

func WithFlags(flags auth.FlagsFunc) Option {
	return func(app *App) error {
		if flags == nil {
			return ErrNilOption
		}
		app.flags = flags
		return nil
	}
}

func WithNotifier(n interceptor.Notifier) Option {
	return func(app *App) error {
		if n == nil {
			return ErrNilOption
		}
		app.notifier = n
		return nil
	}
}

func WithReporter(r monitor.Reporter) Option {
	return func(app *App) error {
		if r == nil {
			return ErrNilOption
		}
		app.reporter = r
		return nil
	}
}

func WithMonitorSink(s monitor.Sink) Option {
	return func(app *App) error {
		if s == nil {
			return ErrNilOption
		}
		app.sink = s
		return nil
	}
}

// WithRedirect sets the hook called after a forced logout.
func WithRedirect(fn func(context.Context)) Option {
	return func(app *App) error {
		if fn == nil {
			return ErrNilOption
		}
		app.redirect = fn
		return nil
	}
}

// WithTransport sets the base RoundTripper under the middleware chain.
func WithTransport(rt http.RoundTripper) Option {
	return func(app *App) error {
		if rt == nil {
			return ErrNilOption
		}
		app.transport = rt
		return nil
	}
}
