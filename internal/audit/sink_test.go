package audit_test

import (
	"context"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/linkgate/internal/audit"
	"github.com/serroba/linkgate/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type nopSubscriber struct{}

func (nopSubscriber) Subscribe(context.Context, string) (<-chan *message.Message, error) {
	return make(chan *message.Message), nil
}

func (nopSubscriber) Close() error { return nil }

func TestLogSink(t *testing.T) {
	ctx := context.Background()

	t.Run("logs failed auth attempts as warnings", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		sink := audit.NewLogSink(zap.New(core))

		require.NoError(t, sink.AuthAttempted(ctx, &audit.AuthAttempted{Method: "password", ClientIP: "1.1.1.1"}))
		require.NoError(t, sink.AuthAttempted(ctx, &audit.AuthAttempted{Method: "password", Success: true}))

		entries := logs.All()
		require.Len(t, entries, 2)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "1.1.1.1", entries[0].ContextMap()["client_ip"])
		assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
		assert.Equal(t, "audit", entries[1].LoggerName)
	})

	t.Run("logs every event type", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		sink := audit.NewLogSink(zap.New(core))

		require.NoError(t, sink.CredentialsUpdated(ctx, &audit.CredentialsUpdated{HasPassword: true}))
		require.NoError(t, sink.RateLimited(ctx, &audit.RateLimited{Action: "setup"}))
		require.NoError(t, sink.LinkIssued(ctx, &audit.LinkIssued{Key: "abc"}))

		assert.Equal(t, 1, logs.FilterMessage("credentials updated").Len())
		assert.Equal(t, 1, logs.FilterMessage("rate limited").Len())
		assert.Equal(t, "abc", logs.FilterMessage("link issued").All()[0].ContextMap()["key"])
	})

	t.Run("registers one consumer per topic", func(t *testing.T) {
		group := messaging.NewConsumerGroup(nopSubscriber{}, zap.NewNop())

		audit.NewLogSink(zap.NewNop()).Register(group, nopSubscriber{}, zap.NewNop())

		assert.Equal(t, 4, group.Len())
	})
}
