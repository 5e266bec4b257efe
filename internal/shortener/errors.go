package shortener

import "errors"

var (
	// ErrInvalidURL indicates a destination that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url format")
	// ErrBlockedDomain indicates a destination whose host is on the block list.
	ErrBlockedDomain = errors.New("destination domain is blocked")
	// ErrInvalidSlug indicates a custom slug with bad characters, bad length, or a reserved word.
	ErrInvalidSlug = errors.New("invalid custom slug format")
	// ErrCustomSlugDisabled indicates a custom slug was requested while the feature is off.
	ErrCustomSlugDisabled = errors.New("custom slugs are disabled")
	// ErrSlugTaken indicates the requested custom slug is already bound.
	ErrSlugTaken = errors.New("custom slug already exists")
	// ErrExhausted indicates random key generation kept colliding past the attempt ceiling.
	ErrExhausted = errors.New("could not allocate a free key")
	// ErrNotFound indicates no link is bound to the key.
	ErrNotFound = errors.New("link not found")
	// ErrStore indicates the backing store failed.
	ErrStore = errors.New("link store failure")
)
