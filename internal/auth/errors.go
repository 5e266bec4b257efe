package auth

import "errors"

var (
	// ErrUnauthorized indicates a setup request with the wrong administrator key.
	ErrUnauthorized = errors.New("invalid admin key")
	// ErrAuthenticationFailed indicates neither factor matched the stored credentials.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrNotConfigured indicates no credential record has been set up yet.
	ErrNotConfigured = errors.New("authentication not configured")
	// ErrNoFactor indicates a setup request without password or fingerprint
	// while factors are required.
	ErrNoFactor = errors.New("at least one authentication factor is required")
	// ErrStore indicates the backing store failed.
	ErrStore = errors.New("credential store failure")
)
