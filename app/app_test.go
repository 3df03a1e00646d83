package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/app"
	"github.com/dmitrymomot/sessionguard/core/auth"
	"github.com/dmitrymomot/sessionguard/core/logger"
	"github.com/dmitrymomot/sessionguard/core/monitor"
	"github.com/dmitrymomot/sessionguard/core/session"
	"github.com/dmitrymomot/sessionguard/internal/stubgateway"
)

type notes struct {
	mu   sync.Mutex
	msgs []string
}

func (n *notes) ShowError(_ context.Context, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *notes) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

type env struct {
	gw        *stubgateway.Gateway
	srv       *httptest.Server
	app       *app.App
	store     *session.MemoryStore
	notes     *notes
	events    chan monitor.Event
	redirects int
	mu        sync.Mutex
}

func (e *env) redirectCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.redirects
}

func newEnv(t *testing.T, opts ...app.Option) *env {
	t.Helper()

	e := &env{
		gw:     stubgateway.New([]byte("secret")),
		store:  session.NewMemoryStore(nil),
		notes:  &notes{},
		events: make(chan monitor.Event, 4),
	}
	e.srv = httptest.NewServer(e.gw)
	t.Cleanup(e.srv.Close)

	token, err := e.gw.IssueToken("acct-1", "jane")
	require.NoError(t, err)

	cfg := app.Config{
		APIBaseURL:     e.srv.URL,
		RefreshPath:    e.gw.RefreshPath(),
		HTTPTimeout:    5 * time.Second,
		AccountID:      "acct-1",
		Username:       "jane",
		Token:          token,
		TimeoutMinutes: 100,
		AppName:        "sessionguard-test",
	}

	base := []app.Option{
		app.WithLogger(logger.Discard()),
		app.WithStore(e.store),
		app.WithNotifier(e.notes),
		app.WithMonitorSink(monitor.SinkFunc(func(_ context.Context, ev monitor.Event) error {
			e.events <- ev
			return nil
		})),
		app.WithRedirect(func(context.Context) {
			e.mu.Lock()
			e.redirects++
			e.mu.Unlock()
		}),
	}
	a, err := app.New(cfg, append(base, opts...)...)
	require.NoError(t, err)
	e.app = a
	return e
}

func (e *env) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.app.Client().Get(e.srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *env) ageToken(t *testing.T, age time.Duration) {
	t.Helper()
	require.NoError(t, e.store.SetMany(context.Background(), map[string]string{
		session.KeyLastTokenSetTime: strconv.FormatInt(time.Now().Add(-age).UnixMilli(), 10),
	}))
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires base url", func(t *testing.T) {
		t.Parallel()
		_, err := app.New(app.Config{})
		assert.ErrorIs(t, err, app.ErrNoBaseURL)
	})

	t.Run("unknown store", func(t *testing.T) {
		t.Parallel()
		_, err := app.New(app.Config{APIBaseURL: "http://localhost", SessionStore: "etcd"},
			app.WithLogger(logger.Discard()))
		assert.ErrorIs(t, err, app.ErrUnknownStore)
	})

	t.Run("nil option", func(t *testing.T) {
		t.Parallel()
		_, err := app.New(app.Config{APIBaseURL: "http://localhost"}, app.WithStore(nil))
		assert.ErrorIs(t, err, app.ErrNilOption)
	})

	t.Run("seeds session", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		snap := e.store.Snapshot()
		assert.Equal(t, "acct-1", snap[session.KeyAccountID])
		assert.Equal(t, "jane", snap[session.KeyUsername])
		assert.Equal(t, "100", snap[session.KeySessionTimeout])
		assert.NotEmpty(t, snap[session.KeyToken])
		assert.NotEmpty(t, snap[session.KeyLastTokenSetTime])
	})
}

func TestRefreshThroughPipeline(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	before := e.store.Snapshot()[session.KeyToken]
	e.ageToken(t, time.Hour)

	require.True(t, e.app.Refresher().Check(context.Background()))
	require.NoError(t, e.app.Refresher().Wait(context.Background()))

	after := e.store.Snapshot()[session.KeyToken]
	assert.NotEqual(t, before, after)
	assert.Equal(t, int64(1), e.gw.Refreshes())
	assert.False(t, e.app.LoggedOut())
}

func TestRefreshWithoutAuthHeaderLogsOut(t *testing.T) {
	t.Parallel()

	e := newEnv(t, app.WithFlags(auth.StaticFlags(auth.Flags{NoAuthHeader: true})))
	e.ageToken(t, time.Hour)

	require.True(t, e.app.Refresher().Check(context.Background()))
	_ = e.app.Refresher().Wait(context.Background())

	assert.True(t, e.app.LoggedOut())
	assert.Equal(t, 1, e.redirectCount())
	_, err := session.LoadToken(context.Background(), e.store)
	assert.ErrorIs(t, err, session.ErrNoToken)
}

func TestInterceptedResponses(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		resp := e.get(t, stubgateway.PathOK)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, e.notes.all())
		assert.False(t, e.app.LoggedOut())
	})

	t.Run("unauthorized logs out once", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		resp := e.get(t, stubgateway.PathUnauthorized)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		assert.Equal(t, []string{"Token is not valid"}, e.notes.all())
		assert.True(t, e.app.LoggedOut())
		assert.Equal(t, 1, e.redirectCount())
		assert.Equal(t, "Token is not valid", e.store.Snapshot()[session.KeyUnauthorizedMessage])
	})

	t.Run("bad request not whitelisted keeps session", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		e.get(t, stubgateway.PathBadRequestWhitelisted)

		assert.Equal(t, []string{"Current IP Address is not whitelisted"}, e.notes.all())
		assert.False(t, e.app.LoggedOut())
	})

	t.Run("rate limited", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		e.get(t, stubgateway.PathRateLimited)

		assert.Equal(t, []string{"Rate limit exceeded"}, e.notes.all())
		assert.False(t, e.app.LoggedOut())
	})

	t.Run("malformed body is reported", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		e.get(t, stubgateway.PathMalformed)

		select {
		case ev := <-e.events:
			assert.Equal(t, http.StatusUnauthorized, ev.Metadata["status"])
			assert.Equal(t, "acct-1", ev.Metadata["accountId"])
			assert.Equal(t, "jane", ev.User.Name)
		case <-time.After(time.Second):
			t.Fatal("expected a monitoring event")
		}
		assert.False(t, e.app.LoggedOut())
	})
}

func TestDispatchPromiseResponse(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	resp, err := e.srv.Client().Get(e.srv.URL + stubgateway.PathPlainUnauthorized)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, e.app.DispatchPromiseResponse(context.Background(), resp))
	assert.True(t, e.app.LoggedOut())
	assert.Empty(t, e.notes.all())
}

func TestLogoutIsIdempotent(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.app.Logout(context.Background())
	e.app.Logout(context.Background())

	assert.Equal(t, 1, e.redirectCount())
}

func TestLoginAfterLogout(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.get(t, stubgateway.PathPlainUnauthorized)
	require.True(t, e.app.LoggedOut())

	token, err := e.gw.IssueToken("acct-1", "jane")
	require.NoError(t, err)
	require.NoError(t, e.app.Login(context.Background(), token))
	assert.False(t, e.app.LoggedOut())
	assert.Equal(t, token, e.store.Snapshot()[session.KeyToken])

	e.get(t, stubgateway.PathPlainUnauthorized)
	assert.True(t, e.app.LoggedOut())
	assert.Equal(t, 2, e.redirectCount())

	assert.ErrorIs(t, e.app.Login(context.Background(), ""), session.ErrNoToken)
}

func TestRun(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.app.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	e.app.Activity()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestReady(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	assert.NoError(t, e.app.Ready(context.Background()))
}
