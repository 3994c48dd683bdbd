package feed

import (
	"encoding/json"
	"fmt"
	"io"
)

// Event types published for combo changes.
const (
	ComboCreated = "combo.created"
	ComboUpdated = "combo.updated"
	ComboDeleted = "combo.deleted"
)

// Event is one server-sent event. Data is the JSON payload.
type Event struct {
	ID   uint64
	Type string
	Data json.RawMessage
}

// NewEvent marshals payload into an Event of the given type.
func NewEvent(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Data: data}, nil
}

// WriteTo writes the event in text/event-stream framing.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", e.ID, e.Type, e.Data)
	return int64(n), err
}
