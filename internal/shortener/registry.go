// Package shortener issues short keys for destination URLs and resolves them back.
package shortener

import (
	"context"
	"errors"
	"fmt"

	"github.com/serroba/linkgate/internal/kv"
)

// DefaultMaxAttempts bounds random-key collision retries.
const DefaultMaxAttempts = 16

// Options configures a Registry.
type Options struct {
	Dedup         bool
	CustomSlugs   bool
	MaxSlugLength int
	Reserved      map[string]struct{}
	MaxAttempts   int
}

// Issued describes the outcome of a successful Issue call.
type Issued struct {
	Key          string
	Destination  string
	Custom       bool
	Deduplicated bool
}

// Registry binds keys to destinations in a kv.Store. A bound key is never
// rebound: all writes of link keys go through PutIfAbsent.
type Registry struct {
	store    kv.Store
	generate Generator
	opts     Options
}

// NewRegistry creates a registry over store using generate for random keys.
func NewRegistry(store kv.Store, generate Generator, opts Options) *Registry {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	if opts.MaxSlugLength <= 0 {
		opts.MaxSlugLength = DefaultMaxSlugLength
	}

	if opts.Reserved == nil {
		opts.Reserved = ReservedSet(DefaultReserved)
	}

	return &Registry{
		store:    store,
		generate: generate,
		opts:     opts,
	}
}

// Issue returns a key bound to destination.
//
// With a custom slug the slug is validated and claimed, bypassing dedup.
// Without one, and with dedup on, a previously issued key for the identical
// destination string is returned; otherwise a fresh random key is claimed and
// indexed by the destination's fingerprint.
func (r *Registry) Issue(ctx context.Context, destination, customSlug string) (*Issued, error) {
	if customSlug != "" {
		return r.issueCustom(ctx, destination, customSlug)
	}

	if !r.opts.Dedup {
		key, err := r.claimRandom(ctx, destination)
		if err != nil {
			return nil, err
		}

		return &Issued{Key: key, Destination: destination}, nil
	}

	index := IndexKey(destination)

	existing, err := r.store.Get(ctx, index)
	if err == nil {
		return &Issued{Key: existing, Destination: destination, Deduplicated: true}, nil
	}

	if !errors.Is(err, kv.ErrNotFound) {
		return nil, storeErr(err)
	}

	key, err := r.claimRandom(ctx, destination)
	if err != nil {
		return nil, err
	}

	if err := r.store.Put(ctx, index, key, 0); err != nil {
		return nil, storeErr(err)
	}

	return &Issued{Key: key, Destination: destination}, nil
}

// Resolve returns the destination bound to key. Keys outside the slug
// charset are never links and report ErrNotFound without a store lookup.
func (r *Registry) Resolve(ctx context.Context, key string) (string, error) {
	if !slugPattern.MatchString(key) {
		return "", ErrNotFound
	}

	destination, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return "", ErrNotFound
		}

		return "", storeErr(err)
	}

	return destination, nil
}

func (r *Registry) issueCustom(ctx context.Context, destination, slug string) (*Issued, error) {
	if !r.opts.CustomSlugs {
		return nil, ErrCustomSlugDisabled
	}

	if !ValidateCustom(slug, r.opts.MaxSlugLength, r.opts.Reserved) {
		return nil, ErrInvalidSlug
	}

	if err := r.store.PutIfAbsent(ctx, slug, destination, 0); err != nil {
		if errors.Is(err, kv.ErrExists) {
			return nil, ErrSlugTaken
		}

		return nil, storeErr(err)
	}

	return &Issued{Key: slug, Destination: destination, Custom: true}, nil
}

// claimRandom draws fresh keys until one is free, up to MaxAttempts.
func (r *Registry) claimRandom(ctx context.Context, destination string) (string, error) {
	for range r.opts.MaxAttempts {
		key := r.generate()

		err := r.store.PutIfAbsent(ctx, key, destination, 0)
		if err == nil {
			return key, nil
		}

		if !errors.Is(err, kv.ErrExists) {
			return "", storeErr(err)
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrExhausted, r.opts.MaxAttempts)
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStore, err)
}
