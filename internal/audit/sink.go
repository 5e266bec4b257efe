package audit

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/linkgate/internal/messaging"
	"go.uber.org/zap"
)

// LogSink writes consumed audit events to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink logging under the "audit" name.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("audit")}
}

func (s *LogSink) CredentialsUpdated(_ context.Context, e *CredentialsUpdated) error {
	s.logger.Info("credentials updated",
		header(e.Header),
		zap.Bool("has_password", e.HasPassword),
		zap.Bool("has_fingerprint", e.HasFingerprint),
		zap.String("client_ip", e.ClientIP),
	)

	return nil
}

func (s *LogSink) AuthAttempted(_ context.Context, e *AuthAttempted) error {
	log := s.logger.Info
	if !e.Success {
		log = s.logger.Warn
	}

	log("auth attempted",
		header(e.Header),
		zap.String("method", e.Method),
		zap.Bool("success", e.Success),
		zap.String("client_ip", e.ClientIP),
	)

	return nil
}

func (s *LogSink) RateLimited(_ context.Context, e *RateLimited) error {
	s.logger.Warn("rate limited",
		header(e.Header),
		zap.String("action", e.Action),
		zap.String("client_ip", e.ClientIP),
	)

	return nil
}

func (s *LogSink) LinkIssued(_ context.Context, e *LinkIssued) error {
	s.logger.Info("link issued",
		header(e.Header),
		zap.String("key", e.Key),
		zap.Bool("custom", e.Custom),
		zap.Bool("deduplicated", e.Deduplicated),
	)

	return nil
}

// Register adds one consumer per audit topic to group.
func (s *LogSink) Register(group *messaging.ConsumerGroup, subscriber message.Subscriber, logger *zap.Logger) {
	group.Add(messaging.NewConsumer(subscriber, TopicCredentialsUpdated, s.CredentialsUpdated, logger))
	group.Add(messaging.NewConsumer(subscriber, TopicAuthAttempted, s.AuthAttempted, logger))
	group.Add(messaging.NewConsumer(subscriber, TopicRateLimited, s.RateLimited, logger))
	group.Add(messaging.NewConsumer(subscriber, TopicLinkIssued, s.LinkIssued, logger))
}

func header(h Header) zap.Field {
	return zap.Dict("event", zap.String("id", h.ID), zap.Time("occurred_at", h.OccurredAt))
}
