package interceptor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/sessionguard/core/logger"
	"github.com/dmitrymomot/sessionguard/core/monitor"
	"github.com/dmitrymomot/sessionguard/core/session"
)

// Notifier shows a message to the user.
type Notifier interface {
	ShowError(ctx context.Context, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string)

// ShowError implements Notifier.
func (f NotifierFunc) ShowError(ctx context.Context, message string) { f(ctx, message) }

// LogoutFunc ends the session. It must be idempotent.
type LogoutFunc func(ctx context.Context)

// Context carries the collaborators a Handler acts through.
// Username and AccountID are read from Store when left empty.
type Context struct {
	Username  string
	AccountID string
	Notifier  Notifier
	Logout    LogoutFunc
	Reporter  monitor.Reporter
	Store     session.Store
}

// Handler applies Classify decisions to responses. It never panics on a bad
// response and never returns errors to the caller.
type Handler struct {
	ictx   Context
	logger *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler creates a response handler bound to ictx.
func NewHandler(ictx Context, opts ...Option) *Handler {
	h := &Handler{ictx: ictx, logger: logger.Discard()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// MaxBodySize caps how much of an error body is buffered for classification.
const MaxBodySize = 1 << 20

// Handle inspects resp and applies the resulting decision.
// Only JSON bodies of 400, 401 and 429 responses are read. They are buffered
// and restored so that callers can still read them.
func (h *Handler) Handle(ctx context.Context, resp *http.Response) {
	if resp == nil || (resp.StatusCode >= 200 && resp.StatusCode <= 299) {
		return
	}

	isJSON := IsJSON(resp.Header)
	var body []byte
	if isJSON && needsBody(resp.StatusCode) {
		var err error
		if body, err = readBody(resp); err != nil {
			h.report(ctx, resp, err)
			return
		}
	}

	d, err := Classify(resp.StatusCode, isJSON, body)
	if err != nil {
		h.report(ctx, resp, err)
		return
	}
	h.apply(ctx, resp, d)
}

func (h *Handler) apply(ctx context.Context, resp *http.Response, d Decision) {
	if d.Outcome == OutcomePass {
		return
	}

	h.logger.InfoContext(ctx, "error response intercepted",
		logger.Component("interceptor"),
		logger.StatusCode(resp.StatusCode),
		logger.URL(requestURL(resp)),
		logger.Outcome(d.Outcome.String()))

	if d.Outcome.Notifies() {
		if h.ictx.Notifier != nil {
			h.ictx.Notifier.ShowError(ctx, d.Message)
		}
		if d.StorageKey != "" && h.ictx.Store != nil {
			if err := h.ictx.Store.SetMany(ctx, map[string]string{d.StorageKey: d.Message}); err != nil {
				h.logger.WarnContext(ctx, "failed to persist response message",
					logger.Component("interceptor"),
					logger.Key("storage_key", d.StorageKey),
					logger.Error(err))
			}
		}
	}

	if d.Outcome.LogsOut() && h.ictx.Logout != nil {
		h.ictx.Logout(ctx)
	}
}

func (h *Handler) report(ctx context.Context, resp *http.Response, err error) {
	username, accountID := h.identity(ctx)

	h.logger.WarnContext(ctx, "error response could not be parsed",
		logger.Component("interceptor"),
		logger.StatusCode(resp.StatusCode),
		logger.AccountID(accountID),
		logger.Error(err))

	if h.ictx.Reporter == nil {
		return
	}
	h.ictx.Reporter.Notify(ctx, monitor.WithClass("ResponseParseError", err), func(ev *monitor.Event) {
		ev.Severity = monitor.SeverityError
		ev.SetUser(accountID, username)
		ev.AddMetadata("url", requestURL(resp))
		ev.AddMetadata("status", resp.StatusCode)
		ev.AddMetadata("accountId", accountID)
	})
}

func (h *Handler) identity(ctx context.Context) (username, accountID string) {
	username, accountID = h.ictx.Username, h.ictx.AccountID
	if h.ictx.Store == nil {
		return username, accountID
	}
	if username == "" {
		username = session.Username(ctx, h.ictx.Store)
	}
	if accountID == "" {
		accountID = session.AccountID(ctx, h.ictx.Store)
	}
	return username, accountID
}

// IsJSON reports whether the header declares a JSON body.
func IsJSON(header http.Header) bool {
	return strings.Contains(strings.ToLower(header.Get("Content-Type")), "application/json")
}

func needsBody(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusTooManyRequests:
		return true
	}
	return false
}

// readBody buffers up to MaxBodySize bytes. The restored body replays the
// buffered prefix followed by whatever is left unread.
func readBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, nil
	}
	orig := resp.Body
	data, err := io.ReadAll(io.LimitReader(orig, MaxBodySize))
	resp.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(data), orig), Closer: orig}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadBody, err)
	}
	return data, nil
}

type replayBody struct {
	io.Reader
	io.Closer
}

func requestURL(resp *http.Response) string {
	if resp.Request == nil || resp.Request.URL == nil {
		return ""
	}
	return resp.Request.URL.String()
}
