package event

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Event is a named payload with delivery metadata.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// Named lets a payload choose its own event name instead of its type name.
type Named interface {
	EventName() string
}

// NewEvent creates an Event with a generated ID and the current time.
// The name comes from Named when the payload implements it, otherwise from its type.
//
//	evt := event.NewEvent(UserCreated{UserID: "123"})
//	// evt.Name == "UserCreated"
func NewEvent(payload any) Event {
	return Event{
		ID:        uuid.New().String(),
		Name:      NameOf(payload),
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// NameOf returns the event name for payload.
func NameOf(payload any) string {
	if n, ok := payload.(Named); ok {
		return n.EventName()
	}
	return typeName(payload)
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
