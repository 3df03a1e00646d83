package monitor

import (
	"errors"
	"reflect"
	"runtime/debug"
)

// Severity of a reported event.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ErrorDetail describes one error in an Event.
type ErrorDetail struct {
	ErrorClass   string `json:"errorClass"`
	ErrorMessage string `json:"errorMessage"`
}

// OriginalError keeps what the client knew about the raw error.
type OriginalError struct {
	Stack string `json:"stack,omitempty"`
}

// User identifies who hit the error.
type User struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Event is one error report on its way to the monitoring backend.
type Event struct {
	Errors        []ErrorDetail  `json:"errors,omitempty"`
	OriginalError *OriginalError `json:"originalError,omitempty"`
	Severity      Severity       `json:"severity,omitempty"`
	User          User           `json:"user"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	AppVersion    string         `json:"appVersion,omitempty"`
}

// AddMetadata sets key in the metadata bag.
func (e *Event) AddMetadata(key string, value any) {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
}

// SetUser records the user identity.
func (e *Event) SetUser(id, name string) {
	e.User = User{ID: id, Name: name}
}

// ClassError attaches an explicit error class to an error.
type ClassError struct {
	Class string
	Err   error
}

func (e *ClassError) Error() string {
	if e.Err == nil {
		return e.Class
	}
	return e.Err.Error()
}

func (e *ClassError) Unwrap() error { return e.Err }

// ErrorClass implements the classifier interface.
func (e *ClassError) ErrorClass() string { return e.Class }

// WithClass wraps err so it reports class.
func WithClass(class string, err error) error {
	return &ClassError{Class: class, Err: err}
}

type classifier interface {
	ErrorClass() string
}

type stacker interface {
	StackTrace() string
}

// NewEvent builds an Event for err with a captured stack.
func NewEvent(err error) Event {
	ev := Event{Severity: SeverityError}
	if err == nil {
		return ev
	}

	ev.Errors = []ErrorDetail{{
		ErrorClass:   errorClass(err),
		ErrorMessage: err.Error(),
	}}

	stack := string(debug.Stack())
	var st stacker
	if errors.As(err, &st) {
		stack = st.StackTrace()
	}
	ev.OriginalError = &OriginalError{Stack: stack}

	return ev
}

func errorClass(err error) string {
	var c classifier
	if errors.As(err, &c) {
		return c.ErrorClass()
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
