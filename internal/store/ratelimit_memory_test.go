package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/linkgate/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMemoryStore(t *testing.T) {
	t.Run("records and counts attempts", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		count1, err := s.Record(context.Background(), "1.2.3.4:auth", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count1)

		count2, err := s.Record(context.Background(), "1.2.3.4:auth", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(2), count2)

		count3, err := s.Record(context.Background(), "1.2.3.4:auth", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(3), count3)
	})

	t.Run("tracks keys independently", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_, _ = s.Record(context.Background(), "1.2.3.4:auth", time.Minute)
		_, _ = s.Record(context.Background(), "1.2.3.4:auth", time.Minute)

		count, err := s.Record(context.Background(), "1.2.3.4:setup", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "setup should have its own counter")
	})

	t.Run("resets after the window elapses", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_, _ = s.Record(context.Background(), "key1", 50*time.Millisecond)
		_, _ = s.Record(context.Background(), "key1", 50*time.Millisecond)

		time.Sleep(60 * time.Millisecond)

		count, err := s.Record(context.Background(), "key1", 50*time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "window should restart at one")
	})

	t.Run("window does not slide with later attempts", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_, _ = s.Record(context.Background(), "key1", 80*time.Millisecond)

		time.Sleep(50 * time.Millisecond)

		count, _ := s.Record(context.Background(), "key1", 80*time.Millisecond)
		assert.Equal(t, int64(2), count)

		time.Sleep(40 * time.Millisecond)

		count, _ = s.Record(context.Background(), "key1", 80*time.Millisecond)
		assert.Equal(t, int64(1), count, "reset time is anchored to the first attempt")
	})

	t.Run("prune drops expired windows only", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_, _ = s.Record(context.Background(), "short", 10*time.Millisecond)
		_, _ = s.Record(context.Background(), "long", time.Hour)

		time.Sleep(20 * time.Millisecond)

		assert.Equal(t, 1, s.Prune())

		count, _ := s.Record(context.Background(), "long", time.Hour)
		assert.Equal(t, int64(2), count)
	})

	t.Run("janitor shuts down cleanly", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()
		j := s.StartJanitor(5 * time.Millisecond)

		time.Sleep(15 * time.Millisecond)

		require.NoError(t, j.Shutdown())
		require.NoError(t, j.Shutdown())
	})
}
