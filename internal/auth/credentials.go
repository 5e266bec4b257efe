package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/serroba/linkgate/internal/kv"
)

// CredentialsKey is the fixed store key of the single administrator record.
const CredentialsKey = "admin:credentials"

// FingerprintCredential references a platform authenticator registered at setup.
type FingerprintCredential struct {
	CredentialID string `json:"credentialId"`
	PublicKey    string `json:"publicKey,omitempty"`
}

// PasswordHash is a derived password hash and the salt it was derived with.
type PasswordHash struct {
	Hash string `json:"hash"`
	Salt string `json:"salt"`
}

// Credentials is the administrator's credential record.
type Credentials struct {
	Fingerprint *FingerprintCredential `json:"fingerprint"`
	Password    *PasswordHash          `json:"password"`
	Created     time.Time              `json:"created"`
}

// CredentialStore persists the credential record in a kv.Store.
type CredentialStore struct {
	store kv.Store
}

// NewCredentialStore creates a credential store.
func NewCredentialStore(store kv.Store) *CredentialStore {
	return &CredentialStore{store: store}
}

// Load returns the stored record. A missing or unreadable record is
// reported as ErrNotConfigured.
func (c *CredentialStore) Load(ctx context.Context) (*Credentials, error) {
	raw, err := c.store.Get(ctx, CredentialsKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNotConfigured
		}

		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, ErrNotConfigured
	}

	return &creds, nil
}

// Save overwrites the stored record.
func (c *CredentialStore) Save(ctx context.Context, creds *Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	if err := c.store.Put(ctx, CredentialsKey, string(data), 0); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	return nil
}
