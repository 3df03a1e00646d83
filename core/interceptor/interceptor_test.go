package interceptor_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/core/event"
	"github.com/dmitrymomot/sessionguard/core/interceptor"
	"github.com/dmitrymomot/sessionguard/core/monitor"
	"github.com/dmitrymomot/sessionguard/core/session"
)

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) ShowError(ctx context.Context, message string) {
	m.Called(ctx, message)
}

type mockLogout struct{ mock.Mock }

func (m *mockLogout) Logout(ctx context.Context) { m.Called(ctx) }

type mockReporter struct{ mock.Mock }

func (m *mockReporter) Notify(ctx context.Context, err error, fn func(*monitor.Event)) {
	ev := monitor.NewEvent(err)
	if fn != nil {
		fn(&ev)
	}
	m.Called(ctx, err, ev)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

type fixture struct {
	notifier *mockNotifier
	logout   *mockLogout
	reporter *mockReporter
	store    *session.MemoryStore
	handler  *interceptor.Handler
}

func newFixture() *fixture {
	f := &fixture{
		notifier: &mockNotifier{},
		logout:   &mockLogout{},
		reporter: &mockReporter{},
		store: session.NewMemoryStore(map[string]string{
			session.KeyUsername:  "jane",
			session.KeyAccountID: "acct-1",
		}),
	}
	f.handler = interceptor.NewHandler(interceptor.Context{
		Notifier: f.notifier,
		Logout:   f.logout.Logout,
		Reporter: f.reporter,
		Store:    f.store,
	})
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.notifier.AssertExpectations(t)
	f.logout.AssertExpectations(t)
	f.reporter.AssertExpectations(t)
}

func response(status int, contentType, body string) *http.Response {
	rec := httptest.NewRecorder()
	if contentType != "" {
		rec.Header().Set("Content-Type", contentType)
	}
	rec.WriteHeader(status)
	_, _ = rec.WriteString(body)
	resp := rec.Result()
	resp.Request = httptest.NewRequest(http.MethodGet, "https://api.example.com/ng/api/projects", nil)
	return resp
}

const jsonType = "application/json; charset=utf-8"

func TestHandle(t *testing.T) {
	t.Parallel()

	t.Run("ok response has no side effects", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.handler.Handle(context.Background(), response(http.StatusOK, jsonType, `{"responseMessages":[{"code":"UNAUTHORIZED"}]}`))
		f.assertExpectations(t)
	})

	t.Run("non-json 401 logs out once without message", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.logout.On("Logout", mock.Anything).Once()

		f.handler.Handle(context.Background(), response(http.StatusUnauthorized, "text/html", "<html>denied</html>"))

		f.assertExpectations(t)
		f.logout.AssertNumberOfCalls(t, "Logout", 1)
		f.notifier.AssertNotCalled(t, "ShowError", mock.Anything, mock.Anything)
	})

	t.Run("non-json 500 is ignored", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.handler.Handle(context.Background(), response(http.StatusInternalServerError, "text/plain", "oops"))
		f.assertExpectations(t)
	})

	t.Run("json 401 without code logs out", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.logout.On("Logout", mock.Anything).Once()

		f.handler.Handle(context.Background(), response(http.StatusUnauthorized, jsonType, `{"status":"ERROR","responseMessages":[]}`))

		f.assertExpectations(t)
		f.notifier.AssertNotCalled(t, "ShowError", mock.Anything, mock.Anything)
	})

	t.Run("json 401 not whitelisted shows message and logs out once", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.notifier.On("ShowError", mock.Anything, "IP 10.0.0.1 is not whitelisted").Once()
		f.logout.On("Logout", mock.Anything).Once()

		f.handler.Handle(context.Background(), response(http.StatusUnauthorized, jsonType,
			`{"responseMessages":[{"code":"UNAUTHORIZED","message":"nope"},{"code":"NOT_WHITELISTED_IP","message":"IP 10.0.0.1 is not whitelisted"}]}`))

		f.assertExpectations(t)
		f.logout.AssertNumberOfCalls(t, "Logout", 1)
		assert.Equal(t, "IP 10.0.0.1 is not whitelisted", f.store.Snapshot()[session.KeyNotWhitelistedIPMessage])
	})

	t.Run("json 400 not whitelisted shows message without logout", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.notifier.On("ShowError", mock.Anything, "blocked").Once()

		f.handler.Handle(context.Background(), response(http.StatusBadRequest, jsonType,
			`{"responseMessages":[{"code":"NOT_WHITELISTED_IP","message":"blocked"}]}`))

		f.assertExpectations(t)
		f.logout.AssertNotCalled(t, "Logout", mock.Anything)
	})

	t.Run("json 400 unauthorized shows message and logs out", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.notifier.On("ShowError", mock.Anything, "token expired").Once()
		f.logout.On("Logout", mock.Anything).Once()

		f.handler.Handle(context.Background(), response(http.StatusBadRequest, jsonType,
			`{"responseMessages":[{"code":"UNAUTHORIZED","message":"token expired"}]}`))

		f.assertExpectations(t)
		assert.Equal(t, "token expired", f.store.Snapshot()[session.KeyUnauthorizedMessage])
	})

	t.Run("json 400 without code is ignored", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.handler.Handle(context.Background(), response(http.StatusBadRequest, jsonType, `{"message":"invalid field"}`))
		f.assertExpectations(t)
	})

	t.Run("json 429 shows body message", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.notifier.On("ShowError", mock.Anything, "X").Once()

		f.handler.Handle(context.Background(), response(http.StatusTooManyRequests, jsonType, `{"message":"X"}`))

		f.assertExpectations(t)
		f.logout.AssertNotCalled(t, "Logout", mock.Anything)
	})

	t.Run("json 429 falls back to fixed message", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.notifier.On("ShowError", mock.Anything, interceptor.RateLimitFallbackMessage).Once()

		f.handler.Handle(context.Background(), response(http.StatusTooManyRequests, jsonType, `{}`))

		f.assertExpectations(t)
		f.logout.AssertNotCalled(t, "Logout", mock.Anything)
	})

	t.Run("malformed json is reported not propagated", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.reporter.On("Notify", mock.Anything,
			mock.MatchedBy(func(err error) bool { return errors.Is(err, interceptor.ErrMalformedBody) }),
			mock.MatchedBy(func(ev monitor.Event) bool {
				return ev.Severity == monitor.SeverityError &&
					ev.User.Name == "jane" &&
					ev.User.ID == "acct-1" &&
					ev.Metadata["status"] == http.StatusUnauthorized &&
					ev.Metadata["accountId"] == "acct-1" &&
					ev.Metadata["url"] == "https://api.example.com/ng/api/projects"
			})).Once()

		assert.NotPanics(t, func() {
			f.handler.Handle(context.Background(), response(http.StatusUnauthorized, jsonType, `{"responseMessages":`))
		})

		f.assertExpectations(t)
		f.logout.AssertNotCalled(t, "Logout", mock.Anything)
	})

	t.Run("body remains readable", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.notifier.On("ShowError", mock.Anything, "slow down").Once()

		resp := response(http.StatusTooManyRequests, jsonType, `{"message":"slow down"}`)
		f.handler.Handle(context.Background(), resp)

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"message":"slow down"}`, string(data))
	})

	t.Run("logout runs without notifier", func(t *testing.T) {
		t.Parallel()
		logout := &mockLogout{}
		logout.On("Logout", mock.Anything).Once()
		h := interceptor.NewHandler(interceptor.Context{Logout: logout.Logout})

		h.Handle(context.Background(), response(http.StatusUnauthorized, jsonType,
			`{"responseMessages":[{"code":"UNAUTHORIZED","message":"x"}]}`))

		logout.AssertExpectations(t)
	})

	t.Run("non-json 401 logs out when body read fails", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.logout.On("Logout", mock.Anything).Once()

		resp := response(http.StatusUnauthorized, "text/html", "")
		resp.Body = io.NopCloser(failingReader{})
		f.handler.Handle(context.Background(), resp)

		f.assertExpectations(t)
		f.logout.AssertNumberOfCalls(t, "Logout", 1)
		f.reporter.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("json 401 body read failure is reported", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.reporter.On("Notify", mock.Anything,
			mock.MatchedBy(func(err error) bool { return errors.Is(err, interceptor.ErrReadBody) }),
			mock.Anything).Once()

		resp := response(http.StatusUnauthorized, jsonType, "")
		resp.Body = io.NopCloser(failingReader{})
		f.handler.Handle(context.Background(), resp)

		f.assertExpectations(t)
		f.logout.AssertNotCalled(t, "Logout", mock.Anything)
	})

	t.Run("bodies of unclassified responses are not read", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		body := &countingReader{r: strings.NewReader("<html>500</html>")}
		resp := response(http.StatusInternalServerError, jsonType, "")
		resp.Body = io.NopCloser(body)

		f.handler.Handle(context.Background(), resp)

		f.assertExpectations(t)
		assert.Zero(t, body.n)
	})

	t.Run("oversized body stays fully readable", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.reporter.On("Notify", mock.Anything,
			mock.MatchedBy(func(err error) bool { return errors.Is(err, interceptor.ErrMalformedBody) }),
			mock.Anything).Once()

		payload := `{"message":"` + strings.Repeat("x", interceptor.MaxBodySize) + `"}`
		resp := response(http.StatusTooManyRequests, jsonType, payload)
		f.handler.Handle(context.Background(), resp)

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Len(t, data, len(payload))
		f.assertExpectations(t)
	})

	t.Run("nil response is ignored", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		assert.NotPanics(t, func() { f.handler.Handle(context.Background(), nil) })
		f.assertExpectations(t)
	})
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		isJSON  bool
		body    string
		want    interceptor.Decision
		wantErr error
	}{
		{name: "created", status: 201, isJSON: true, body: `{}`, want: interceptor.Decision{}},
		{name: "non-json 403", status: 403, body: "forbidden", want: interceptor.Decision{}},
		{name: "non-json 401", status: 401, want: interceptor.Decision{Outcome: interceptor.OutcomeLogout}},
		{
			name: "whitelist wins over unauthorized", status: 401, isJSON: true,
			body: `{"responseMessages":[{"code":"UNAUTHORIZED","message":"u"},{"code":"NOT_WHITELISTED_IP","message":"w"}]}`,
			want: interceptor.Decision{
				Outcome:    interceptor.OutcomeNotifyAndLogout,
				Message:    "w",
				StorageKey: session.KeyNotWhitelistedIPMessage,
			},
		},
		{
			name: "unauthorized on 401", status: 401, isJSON: true,
			body: `{"responseMessages":[{"code":"UNAUTHORIZED","message":"u"}]}`,
			want: interceptor.Decision{
				Outcome:    interceptor.OutcomeNotifyAndLogout,
				Message:    "u",
				StorageKey: session.KeyUnauthorizedMessage,
			},
		},
		{name: "json 500", status: 500, isJSON: true, body: `not json`, want: interceptor.Decision{}},
		{name: "malformed 429", status: 429, isJSON: true, body: `{`, wantErr: interceptor.ErrMalformedBody},
		{name: "empty json 401", status: 401, isJSON: true, body: ``, wantErr: interceptor.ErrMalformedBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := interceptor.Classify(tt.status, tt.isJSON, []byte(tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsJSON(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	assert.False(t, interceptor.IsJSON(h))
	h.Set("Content-Type", "Application/JSON; charset=utf-8")
	assert.True(t, interceptor.IsJSON(h))
	h.Set("Content-Type", "text/plain")
	assert.False(t, interceptor.IsJSON(h))
}

func TestPromiseAPIResponseEvent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.logout.On("Logout", mock.Anything).Once()

	transport := event.NewSyncTransport([]event.Handler{f.handler.EventHandler()})
	publisher := event.NewPublisher(transport)

	resp := response(http.StatusUnauthorized, "", strings.Repeat("x", 4))
	require.NoError(t, publisher.Publish(context.Background(), interceptor.PromiseAPIResponse{Response: resp}))

	assert.Equal(t, interceptor.PromiseAPIResponseEvent, f.handler.EventHandler().EventName())
	f.assertExpectations(t)
}
