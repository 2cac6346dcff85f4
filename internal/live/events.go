package live

import (
	"encoding/json"
	"fmt"

	"github.com/michaelgov-ctrl/form-lab/internal/forms"
)

type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type EventHandler func(event Event, c *Client) error

const (
	EventFieldChange  = "field_change"
	EventFieldBlur    = "field_blur"
	EventSubmit       = "submit"
	EventFormState    = "form_state"
	EventNotification = "notification"
	EventFormError    = "form_error"
)

type FieldChangeEvent struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type FieldBlurEvent struct {
	Field string `json:"field"`
}

type FormStateEvent struct {
	Session string       `json:"session"`
	Form    string       `json:"form"`
	Values  forms.Values `json:"values"`
	Errors  forms.Errors `json:"errors"`
	Valid   bool         `json:"valid"`
	Reset   bool         `json:"reset"`
}

type NotificationEvent struct {
	Message string `json:"message"`
}

type ErrorEvent struct {
	Error string `json:"error"`
}

func NewOutgoingEvent(t string, evt any) (Event, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal event: %v: %w", evt, err)
	}

	out := Event{
		Payload: data,
		Type:    t,
	}

	return out, nil
}

func NewErrorEvent(msg string) Event {
	data, _ := json.Marshal(ErrorEvent{Error: msg})
	return Event{Type: EventFormError, Payload: data}
}
