package shortener_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/serroba/linkgate/internal/kv"
	"github.com/serroba/linkgate/internal/shortener"
	"github.com/serroba/linkgate/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "https://example.com/a"

var errMock = errors.New("mock error")

// sequence returns keys in order, repeating the last one once exhausted.
func sequence(keys ...string) shortener.Generator {
	i := 0

	return func() string {
		k := keys[min(i, len(keys)-1)]
		i++

		return k
	}
}

// failingStore fails the selected operations.
type failingStore struct {
	kv.Store
	getErr, putErr, claimErr error
}

func (f *failingStore) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}

	return f.Store.Get(ctx, key)
}

func (f *failingStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.putErr != nil {
		return f.putErr
	}

	return f.Store.Put(ctx, key, value, ttl)
}

func (f *failingStore) PutIfAbsent(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.claimErr != nil {
		return f.claimErr
	}

	return f.Store.PutIfAbsent(ctx, key, value, ttl)
}

func newRegistry(t *testing.T, s kv.Store, opts shortener.Options) *shortener.Registry {
	t.Helper()

	gen, err := shortener.NewGenerator(shortener.DefaultAlphabet, shortener.DefaultKeyLength)
	require.NoError(t, err)

	return shortener.NewRegistry(s, gen, opts)
}

func TestRegistry_IssueWithDedup(t *testing.T) {
	opts := shortener.Options{Dedup: true, CustomSlugs: true}

	t.Run("identical urls return the same key", func(t *testing.T) {
		r := newRegistry(t, store.NewMemoryStore(), opts)

		first, err := r.Issue(context.Background(), testURL, "")
		require.NoError(t, err)

		second, err := r.Issue(context.Background(), testURL, "")
		require.NoError(t, err)

		assert.Equal(t, first.Key, second.Key)
		assert.False(t, first.Deduplicated)
		assert.True(t, second.Deduplicated)
	})

	t.Run("different strings get different keys", func(t *testing.T) {
		r := newRegistry(t, store.NewMemoryStore(), opts)

		a, err := r.Issue(context.Background(), "https://example.com/a", "")
		require.NoError(t, err)

		b, err := r.Issue(context.Background(), "https://example.com/a/", "")
		require.NoError(t, err)

		assert.NotEqual(t, a.Key, b.Key)
	})

	t.Run("writes link and fingerprint index", func(t *testing.T) {
		s := store.NewMemoryStore()
		r := newRegistry(t, s, opts)

		issued, err := r.Issue(context.Background(), testURL, "")
		require.NoError(t, err)

		dest, err := s.Get(context.Background(), issued.Key)
		require.NoError(t, err)
		assert.Equal(t, testURL, dest)

		indexed, err := s.Get(context.Background(), shortener.IndexKey(testURL))
		require.NoError(t, err)
		assert.Equal(t, issued.Key, indexed)
	})

	t.Run("custom slugs bypass dedup", func(t *testing.T) {
		s := store.NewMemoryStore()
		r := newRegistry(t, s, opts)

		random, err := r.Issue(context.Background(), testURL, "")
		require.NoError(t, err)

		one, err := r.Issue(context.Background(), testURL, "first-slug")
		require.NoError(t, err)

		two, err := r.Issue(context.Background(), testURL, "second-slug")
		require.NoError(t, err)

		assert.Equal(t, "first-slug", one.Key)
		assert.Equal(t, "second-slug", two.Key)
		assert.True(t, one.Custom)
		assert.NotEqual(t, random.Key, one.Key)

		for _, k := range []string{"first-slug", "second-slug"} {
			dest, _ := s.Get(context.Background(), k)
			assert.Equal(t, testURL, dest)
		}

		indexed, _ := s.Get(context.Background(), shortener.IndexKey(testURL))
		assert.Equal(t, random.Key, indexed, "custom slugs never touch the index")
	})
}

func TestRegistry_IssueWithoutDedup(t *testing.T) {
	t.Run("mints a new key per submission", func(t *testing.T) {
		s := store.NewMemoryStore()
		r := newRegistry(t, s, shortener.Options{})

		a, err := r.Issue(context.Background(), testURL, "")
		require.NoError(t, err)

		b, err := r.Issue(context.Background(), testURL, "")
		require.NoError(t, err)

		assert.NotEqual(t, a.Key, b.Key)

		_, err = s.Get(context.Background(), shortener.IndexKey(testURL))
		assert.ErrorIs(t, err, kv.ErrNotFound, "no index is maintained")
	})
}

func TestRegistry_CustomSlug(t *testing.T) {
	opts := shortener.Options{CustomSlugs: true, MaxSlugLength: 10}

	t.Run("rejects reserved slugs", func(t *testing.T) {
		r := newRegistry(t, store.NewMemoryStore(), opts)

		_, err := r.Issue(context.Background(), testURL, "api")

		assert.ErrorIs(t, err, shortener.ErrInvalidSlug)
	})

	t.Run("rejects slugs over the max length", func(t *testing.T) {
		r := newRegistry(t, store.NewMemoryStore(), opts)

		_, err := r.Issue(context.Background(), testURL, "elevenchars")

		assert.ErrorIs(t, err, shortener.ErrInvalidSlug)
	})

	t.Run("reports a taken slug and keeps the original binding", func(t *testing.T) {
		s := store.NewMemoryStore()
		r := newRegistry(t, s, opts)

		_, err := r.Issue(context.Background(), "https://one.example", "promo")
		require.NoError(t, err)

		_, err = r.Issue(context.Background(), "https://two.example", "promo")
		require.ErrorIs(t, err, shortener.ErrSlugTaken)

		dest, _ := s.Get(context.Background(), "promo")
		assert.Equal(t, "https://one.example", dest)
	})

	t.Run("refuses custom slugs when disabled", func(t *testing.T) {
		r := newRegistry(t, store.NewMemoryStore(), shortener.Options{})

		_, err := r.Issue(context.Background(), testURL, "promo")

		assert.ErrorIs(t, err, shortener.ErrCustomSlugDisabled)
	})
}

func TestRegistry_Collisions(t *testing.T) {
	t.Run("retries with a fresh key on collision", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Put(context.Background(), "taken1", "https://other.example", 0)
		_ = s.Put(context.Background(), "taken2", "https://other.example", 0)

		r := shortener.NewRegistry(s, sequence("taken1", "taken2", "freeKey"), shortener.Options{Dedup: true})

		issued, err := r.Issue(context.Background(), testURL, "")
		require.NoError(t, err)
		assert.Equal(t, "freeKey", issued.Key)

		dest, _ := s.Get(context.Background(), "taken1")
		assert.Equal(t, "https://other.example", dest, "collided key keeps its destination")
	})

	t.Run("gives up past the attempt ceiling", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Put(context.Background(), "taken", "https://other.example", 0)

		r := shortener.NewRegistry(s, sequence("taken"), shortener.Options{MaxAttempts: 3})

		_, err := r.Issue(context.Background(), testURL, "")

		assert.ErrorIs(t, err, shortener.ErrExhausted)
	})
}

func TestRegistry_StoreErrors(t *testing.T) {
	t.Run("index lookup failure", func(t *testing.T) {
		s := &failingStore{Store: store.NewMemoryStore(), getErr: errMock}
		r := newRegistry(t, s, shortener.Options{Dedup: true})

		_, err := r.Issue(context.Background(), testURL, "")

		assert.ErrorIs(t, err, shortener.ErrStore)
	})

	t.Run("claim failure is not retried", func(t *testing.T) {
		s := &failingStore{Store: store.NewMemoryStore(), claimErr: errMock}
		r := newRegistry(t, s, shortener.Options{})

		_, err := r.Issue(context.Background(), testURL, "")

		require.ErrorIs(t, err, shortener.ErrStore)
		assert.ErrorIs(t, err, errMock)
	})

	t.Run("index write failure", func(t *testing.T) {
		s := &failingStore{Store: store.NewMemoryStore(), putErr: errMock}
		r := newRegistry(t, s, shortener.Options{Dedup: true})

		_, err := r.Issue(context.Background(), testURL, "")

		assert.ErrorIs(t, err, shortener.ErrStore)
	})

	t.Run("custom claim failure", func(t *testing.T) {
		s := &failingStore{Store: store.NewMemoryStore(), claimErr: errMock}
		r := newRegistry(t, s, shortener.Options{CustomSlugs: true})

		_, err := r.Issue(context.Background(), testURL, "promo")

		assert.ErrorIs(t, err, shortener.ErrStore)
	})
}

func TestRegistry_Resolve(t *testing.T) {
	t.Run("returns the bound destination", func(t *testing.T) {
		r := newRegistry(t, store.NewMemoryStore(), shortener.Options{})

		issued, err := r.Issue(context.Background(), testURL, "")
		require.NoError(t, err)

		dest, err := r.Resolve(context.Background(), issued.Key)

		require.NoError(t, err)
		assert.Equal(t, testURL, dest)
	})

	t.Run("returns ErrNotFound for unknown keys", func(t *testing.T) {
		r := newRegistry(t, store.NewMemoryStore(), shortener.Options{})

		_, err := r.Resolve(context.Background(), "nope")

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("ignores entries outside the slug keyspace", func(t *testing.T) {
		s := store.NewMemoryStore()
		require.NoError(t, s.Put(context.Background(), "admin:credentials", `{"password":{}}`, 0))
		require.NoError(t, s.Put(context.Background(), "session:abc", `{}`, 0))

		r := newRegistry(t, s, shortener.Options{Dedup: true})
		_, err := r.Issue(context.Background(), testURL, "")
		require.NoError(t, err)

		for _, key := range []string{"admin:credentials", "session:abc", shortener.IndexKey(testURL), ""} {
			_, err := r.Resolve(context.Background(), key)
			assert.ErrorIs(t, err, shortener.ErrNotFound, key)
		}
	})

	t.Run("custom slugs cannot shadow the dedup index", func(t *testing.T) {
		r := newRegistry(t, store.NewMemoryStore(), shortener.Options{Dedup: true, CustomSlugs: true, MaxSlugLength: 200})

		_, err := r.Issue(context.Background(), "https://other.example", shortener.Fingerprint(testURL))
		require.NoError(t, err)

		issued, err := r.Issue(context.Background(), testURL, "")
		require.NoError(t, err)

		assert.False(t, issued.Deduplicated)
		assert.NotEqual(t, "https://other.example", issued.Key)
	})

	t.Run("wraps store failures", func(t *testing.T) {
		r := newRegistry(t, &failingStore{Store: store.NewMemoryStore(), getErr: errMock}, shortener.Options{})

		_, err := r.Resolve(context.Background(), "abc")

		assert.ErrorIs(t, err, shortener.ErrStore)
	})
}
