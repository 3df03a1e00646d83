package interceptor

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/sessionguard/core/session"
)

// Response message codes recognised in error bodies.
const (
	CodeNotWhitelistedIP = "NOT_WHITELISTED_IP"
	CodeUnauthorized     = "UNAUTHORIZED"
)

// RateLimitFallbackMessage is shown for a 429 whose body carries no message.
const RateLimitFallbackMessage = "Too many requests received, please try again later"

// Outcome is the action taken for a response.
type Outcome int

const (
	OutcomePass Outcome = iota
	OutcomeNotify
	OutcomeLogout
	OutcomeNotifyAndLogout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotify:
		return "notify"
	case OutcomeLogout:
		return "logout"
	case OutcomeNotifyAndLogout:
		return "notify_and_logout"
	default:
		return "pass"
	}
}

// Notifies reports whether the outcome shows a message.
func (o Outcome) Notifies() bool { return o == OutcomeNotify || o == OutcomeNotifyAndLogout }

// LogsOut reports whether the outcome forces a logout.
func (o Outcome) LogsOut() bool { return o == OutcomeLogout || o == OutcomeNotifyAndLogout }

// Decision is the result of classifying a response.
type Decision struct {
	Outcome Outcome
	// Message is shown to the user when the outcome notifies.
	Message string
	// StorageKey, when set, is where Message is persisted in session storage.
	StorageKey string
}

type responseMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Message          string            `json:"message"`
	ResponseMessages []responseMessage `json:"responseMessages"`
}

func (b errorBody) find(code string) (responseMessage, bool) {
	for _, m := range b.ResponseMessages {
		if m.Code == code {
			return m, true
		}
	}
	return responseMessage{}, false
}

// Classify decides what to do with a completed response. It has no side effects.
// A body that cannot be decoded yields ErrMalformedBody.
func Classify(status int, isJSON bool, body []byte) (Decision, error) {
	if status >= 200 && status <= 299 {
		return Decision{}, nil
	}

	if !isJSON {
		if status == http.StatusUnauthorized {
			return Decision{Outcome: OutcomeLogout}, nil
		}
		return Decision{}, nil
	}

	switch status {
	case http.StatusUnauthorized, http.StatusBadRequest:
		b, err := decode(body)
		if err != nil {
			return Decision{}, err
		}
		return classifyAuth(status, b), nil

	case http.StatusTooManyRequests:
		b, err := decode(body)
		if err != nil {
			return Decision{}, err
		}
		msg := b.Message
		if msg == "" {
			msg = RateLimitFallbackMessage
		}
		return Decision{Outcome: OutcomeNotify, Message: msg}, nil
	}

	return Decision{}, nil
}

func classifyAuth(status int, b errorBody) Decision {
	is401 := status == http.StatusUnauthorized

	if m, ok := b.find(CodeNotWhitelistedIP); ok {
		d := Decision{
			Outcome:    OutcomeNotify,
			Message:    m.Message,
			StorageKey: session.KeyNotWhitelistedIPMessage,
		}
		if is401 {
			d.Outcome = OutcomeNotifyAndLogout
		}
		return d
	}

	if m, ok := b.find(CodeUnauthorized); ok {
		return Decision{
			Outcome:    OutcomeNotifyAndLogout,
			Message:    m.Message,
			StorageKey: session.KeyUnauthorizedMessage,
		}
	}

	if is401 {
		return Decision{Outcome: OutcomeLogout}
	}
	return Decision{}
}

func decode(body []byte) (errorBody, error) {
	var b errorBody
	if err := json.Unmarshal(body, &b); err != nil {
		return errorBody{}, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	return b, nil
}
