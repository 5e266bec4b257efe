package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// MetadataEventType carries the topic an event was published under.
const MetadataEventType = "event_type"

// Publish publishes one typed event.
type Publish[T any] func(ctx context.Context, event *T) error

// NewPublishFunc creates a typed publish function for topic.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(ctx context.Context, event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", topic, err)
		}

		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set(MetadataEventType, topic)
		msg.SetContext(ctx)

		if err := publisher.Publish(topic, msg); err != nil {
			return fmt.Errorf("publish %s event: %w", topic, err)
		}

		return nil
	}
}

// ClosingPublisher ties a publisher's Close to the injector's Shutdown.
type ClosingPublisher struct {
	message.Publisher
}

// Shutdown closes the underlying publisher.
func (p ClosingPublisher) Shutdown() error {
	return p.Close()
}

// DiscardPublisher drops every message. It stands in when no event sink is configured.
type DiscardPublisher struct{}

var _ message.Publisher = DiscardPublisher{}

func (DiscardPublisher) Publish(string, ...*message.Message) error { return nil }

func (DiscardPublisher) Close() error { return nil }
