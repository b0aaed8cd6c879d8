package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event type names carried in the envelope and as the pubsub "type" attribute.
const (
	TypeUserSignedUp = "user.signed_up"
	TypeMessageSent  = "message.sent"
)

// Envelope is the stable JSON structure every published event is wrapped in.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// Wrap serializes a payload into a versioned envelope ready for publishing.
func Wrap(eventType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s payload: %w", eventType, err)
	}
	env := Envelope{
		Version:    1,
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	return json.Marshal(env)
}

// Decode parses an envelope and unmarshals its data into out.
func Decode(raw []byte, out any) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshaling event envelope: %w", err)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env, fmt.Errorf("unmarshaling %s payload: %w", env.Type, err)
		}
	}
	return env, nil
}
