package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/linkgate/internal/kv"
)

// RedisCacheStore wraps a kv.Store with Redis caching for reads.
// Cache failures never fail a request; the primary store stays authoritative.
type RedisCacheStore struct {
	store  kv.Store
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCacheStore creates a new Redis-cached store decorator.
func NewRedisCacheStore(store kv.Store, client redis.UniversalClient, ttl time.Duration) *RedisCacheStore {
	return &RedisCacheStore{
		store:  store,
		client: client,
		prefix: "cache:",
		ttl:    ttl,
	}
}

// Get returns a value, checking the cache first.
func (r *RedisCacheStore) Get(ctx context.Context, key string) (string, error) {
	if value, err := r.client.Get(ctx, r.prefix+key).Result(); err == nil {
		return value, nil
	}

	// Cache miss - fetch from store
	value, err := r.store.Get(ctx, key)
	if err != nil {
		return "", err
	}

	r.cache(ctx, key, value, r.ttl)

	return value, nil
}

// Put writes through to the store, then refreshes the cache.
func (r *RedisCacheStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.store.Put(ctx, key, value, ttl); err != nil {
		return err
	}

	r.cache(ctx, key, value, r.cacheTTL(ttl))

	return nil
}

// PutIfAbsent claims the key in the store and caches it on success.
func (r *RedisCacheStore) PutIfAbsent(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.store.PutIfAbsent(ctx, key, value, ttl); err != nil {
		return err
	}

	r.cache(ctx, key, value, r.cacheTTL(ttl))

	return nil
}

// Ping checks the primary store when it supports it.
func (r *RedisCacheStore) Ping(ctx context.Context) error {
	if p, ok := r.store.(kv.Pinger); ok {
		return p.Ping(ctx)
	}

	return nil
}

// cacheTTL never lets a cached copy outlive the entry itself.
func (r *RedisCacheStore) cacheTTL(entryTTL time.Duration) time.Duration {
	if entryTTL > 0 && (r.ttl <= 0 || entryTTL < r.ttl) {
		return entryTTL
	}

	return r.ttl
}

func (r *RedisCacheStore) cache(ctx context.Context, key, value string, ttl time.Duration) {
	_ = r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

// Shutdown is a no-op for RedisCacheStore (client managed externally).
func (r *RedisCacheStore) Shutdown() error {
	return nil
}

// Compile-time check.
var _ kv.Store = (*RedisCacheStore)(nil)
