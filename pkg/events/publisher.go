package events

import (
	"context"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
)

// Publisher wraps a Pub/Sub publisher with envelope encoding.
type Publisher struct {
	publisher *pubsub.Publisher
}

// NewPublisher builds an event publisher on top of a topic publisher.
func NewPublisher(publisher *pubsub.Publisher) (*Publisher, error) {
	if publisher == nil {
		return nil, fmt.Errorf("pubsub publisher required")
	}
	return &Publisher{publisher: publisher}, nil
}

// Publish wraps the payload in an envelope and blocks until the message is
// accepted by the broker.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) error {
	raw, err := Wrap(eventType, payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}
	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data:       raw,
		Attributes: map[string]string{"event_type": eventType},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}
