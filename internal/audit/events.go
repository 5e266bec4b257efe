// Package audit records security-relevant events: credential changes,
// authentication attempts, rate-limit denials and link issuance.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Topics events are published under.
const (
	TopicCredentialsUpdated = "audit.credentials_updated"
	TopicAuthAttempted      = "audit.auth_attempted"
	TopicRateLimited        = "audit.rate_limited"
	TopicLinkIssued         = "audit.link_issued"
)

// Header is common to every event.
type Header struct {
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurredAt"`
}

func newHeader(now time.Time) Header {
	return Header{ID: uuid.NewString(), OccurredAt: now.UTC()}
}

// CredentialsUpdated is emitted after the credential record is replaced.
type CredentialsUpdated struct {
	Header

	HasPassword    bool   `json:"hasPassword"`
	HasFingerprint bool   `json:"hasFingerprint"`
	ClientIP       string `json:"clientIp"`
}

// AuthAttempted is emitted for every authentication attempt that reached the
// credential check.
type AuthAttempted struct {
	Header

	Method   string `json:"method"`
	Success  bool   `json:"success"`
	ClientIP string `json:"clientIp"`
}

// RateLimited is emitted when an attempt is denied by the rate limiter.
type RateLimited struct {
	Header

	Action   string `json:"action"`
	ClientIP string `json:"clientIp"`
}

// LinkIssued is emitted after a key is bound or an existing key is returned.
type LinkIssued struct {
	Header

	Key          string `json:"key"`
	Custom       bool   `json:"custom"`
	Deduplicated bool   `json:"deduplicated"`
}
