package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Handler processes a single decoded event.
type Handler[T any] func(ctx context.Context, event *T) error

// MaxHandleAttempts bounds how often one message is handed to a failing
// handler before it is acked and dropped.
const MaxHandleAttempts = 3

// Consumer subscribes to a topic and feeds decoded messages to a typed handler.
//
// Undecodable payloads and messages stamped with another topic's event type
// are acked and dropped. Handler errors nack the message until it has failed
// MaxHandleAttempts times.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler[T]
	logger     *zap.Logger
	cancel     context.CancelFunc
	done       chan struct{}

	// failures counts handler errors per message UUID; only run touches it.
	failures map[string]int
}

// NewConsumer creates a consumer of topic.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
) *Consumer[T] {
	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handler:    handler,
		logger:     logger.With(zap.String("topic", topic)),
		done:       make(chan struct{}),
		failures:   make(map[string]int),
	}
}

// Topic returns the topic this consumer subscribes to.
func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes and processes messages in the background until ctx is
// cancelled or Shutdown is called.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		c.cancel()
		close(c.done)

		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}

	go c.run(ctx, msgs)

	return nil
}

func (c *Consumer[T]) run(ctx context.Context, msgs <-chan *message.Message) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			c.process(ctx, msg)
		}
	}
}

func (c *Consumer[T]) process(ctx context.Context, msg *message.Message) {
	if eventType := msg.Metadata.Get(MetadataEventType); eventType != "" && eventType != c.topic {
		c.drop(msg, "event type does not match topic", zap.String("event_type", eventType))

		return
	}

	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.drop(msg, "undecodable payload", zap.Error(err))

		return
	}

	if err := c.handler(ctx, &event); err != nil {
		c.failures[msg.UUID]++
		attempts := c.failures[msg.UUID]

		if attempts >= MaxHandleAttempts {
			delete(c.failures, msg.UUID)
			c.drop(msg, "handler kept failing", zap.Int("attempts", attempts), zap.Error(err))

			return
		}

		c.logger.Warn("failed to handle event, requeueing",
			zap.String("message_id", msg.UUID),
			zap.Int("attempt", attempts),
			zap.Error(err),
		)
		msg.Nack()

		return
	}

	delete(c.failures, msg.UUID)
	msg.Ack()
}

func (c *Consumer[T]) drop(msg *message.Message, reason string, fields ...zap.Field) {
	c.logger.Error("dropping message",
		append([]zap.Field{zap.String("message_id", msg.UUID), zap.String("reason", reason)}, fields...)...,
	)
	msg.Ack()
}

// Shutdown stops the consumer and waits for the in-flight message to finish.
func (c *Consumer[T]) Shutdown() error {
	if c.cancel != nil {
		c.cancel()
	}

	<-c.done

	return nil
}
