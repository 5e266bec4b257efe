// Package kv defines the key-value contract every persistent backend satisfies.
// Links, the fingerprint index, the credential record and sessions all live in
// one flat keyspace behind this interface.
package kv

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a key has no live value.
	ErrNotFound = errors.New("key not found")
	// ErrExists is returned by PutIfAbsent when a live value is already bound.
	ErrExists = errors.New("key already exists")
	// ErrStore wraps backend failures and timeouts.
	ErrStore = errors.New("store unavailable")
)

// Store is a key-value store with optional per-entry expiry.
// A ttl of zero means the entry never expires.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// PutIfAbsent writes value only if key has no live value, returning ErrExists otherwise.
	PutIfAbsent(ctx context.Context, key, value string, ttl time.Duration) error
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
