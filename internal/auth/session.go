package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/serroba/linkgate/internal/kv"
)

const (
	DefaultSessionTimeout = 24 * time.Hour

	sessionPrefix = "session:"
	tokenBytes    = 32
)

type sessionRecord struct {
	Expires int64 `json:"expires"`
	Created int64 `json:"created"`
}

// SessionManager issues and verifies time-bound session tokens.
type SessionManager struct {
	store   kv.Store
	timeout time.Duration
	now     func() time.Time
}

// NewSessionManager creates a session manager whose sessions live for timeout.
func NewSessionManager(store kv.Store, timeout time.Duration) *SessionManager {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}

	return &SessionManager{store: store, timeout: timeout, now: time.Now}
}

// Issue creates and persists a new session, returning its token.
func (m *SessionManager) Issue(ctx context.Context) (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	token := hex.EncodeToString(b)
	now := m.now()

	data, err := json.Marshal(sessionRecord{
		Expires: now.Add(m.timeout).UnixMilli(),
		Created: now.UnixMilli(),
	})
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	if err := m.store.Put(ctx, sessionPrefix+token, string(data), m.timeout); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStore, err)
	}

	return token, nil
}

// Verify reports whether token names a live session. It never renews or
// deletes the record.
func (m *SessionManager) Verify(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	raw, err := m.store.Get(ctx, sessionPrefix+token)
	if err != nil {
		return false
	}

	var rec sessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return false
	}

	return rec.Expires > m.now().UnixMilli()
}
