package kv

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutStore bounds every call to the wrapped store. Anything other than
// ErrNotFound and ErrExists is reported as ErrStore.
type TimeoutStore struct {
	store   Store
	timeout time.Duration
}

// WithTimeout wraps store so each operation is cancelled after timeout.
func WithTimeout(store Store, timeout time.Duration) *TimeoutStore {
	return &TimeoutStore{store: store, timeout: timeout}
}

func (t *TimeoutStore) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	value, err := t.store.Get(ctx, key)
	if err != nil {
		return "", classify(err)
	}

	return value, nil
}

func (t *TimeoutStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	return classify(t.store.Put(ctx, key, value, ttl))
}

func (t *TimeoutStore) PutIfAbsent(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	return classify(t.store.PutIfAbsent(ctx, key, value, ttl))
}

// Ping forwards to the wrapped store when it supports it.
func (t *TimeoutStore) Ping(ctx context.Context) error {
	p, ok := t.store.(Pinger)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	return p.Ping(ctx)
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrExists), errors.Is(err, ErrStore):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
}

var _ Store = (*TimeoutStore)(nil)
