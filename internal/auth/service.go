// Package auth holds the single-administrator credential record, password
// hashing and session tokens that gate link creation.
package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"go.uber.org/zap"
)

// Method names an authentication factor.
type Method string

const (
	MethodFingerprint Method = "fingerprint"
	MethodPassword    Method = "password"
)

// Attempt is one authentication request.
type Attempt struct {
	Method       Method
	CredentialID string
	Password     string
}

// SetupRequest replaces the credential record. Nil factors are left unset.
type SetupRequest struct {
	AdminKey    string
	Password    *string
	Fingerprint *FingerprintCredential
}

// Config configures a Service.
type Config struct {
	AdminKey string
	// RequireFactor rejects setup requests that supply no factor.
	RequireFactor bool
}

// Service implements setup, authentication and session verification.
type Service struct {
	config   Config
	creds    *CredentialStore
	hasher   *Hasher
	sessions *SessionManager
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the credential store, hasher and session manager.
func NewService(
	config Config,
	creds *CredentialStore,
	hasher *Hasher,
	sessions *SessionManager,
	logger *zap.Logger,
) *Service {
	return &Service{
		config:   config,
		creds:    creds,
		hasher:   hasher,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// Setup verifies the administrator key and overwrites the credential record.
func (s *Service) Setup(ctx context.Context, req SetupRequest) error {
	if s.config.AdminKey == "" ||
		subtle.ConstantTimeCompare([]byte(req.AdminKey), []byte(s.config.AdminKey)) != 1 {
		return ErrUnauthorized
	}

	hasPassword := req.Password != nil && *req.Password != ""
	if !hasPassword && req.Fingerprint == nil {
		if s.config.RequireFactor {
			return ErrNoFactor
		}

		s.logger.Warn("credentials saved without any authentication factor")
	}

	creds := &Credentials{
		Fingerprint: req.Fingerprint,
		Created:     s.now().UTC(),
	}

	if hasPassword {
		salt, err := s.hasher.NewSalt()
		if err != nil {
			return err
		}

		creds.Password = &PasswordHash{
			Hash: s.hasher.Hash(*req.Password, salt),
			Salt: salt,
		}
	}

	return s.creds.Save(ctx, creds)
}

// Authenticate checks attempt against the stored credentials and issues a
// session token on success.
func (s *Service) Authenticate(ctx context.Context, attempt Attempt) (string, error) {
	creds, err := s.creds.Load(ctx)
	if err != nil {
		return "", err
	}

	if !s.matches(creds, attempt) {
		return "", ErrAuthenticationFailed
	}

	return s.sessions.Issue(ctx)
}

// VerifySession reports whether token names a live session.
func (s *Service) VerifySession(ctx context.Context, token string) bool {
	return s.sessions.Verify(ctx, token)
}

func (s *Service) matches(creds *Credentials, attempt Attempt) bool {
	switch attempt.Method {
	case MethodFingerprint:
		// Identifier equality only; no WebAuthn assertion is verified.
		return attempt.CredentialID != "" && creds.Fingerprint != nil &&
			subtle.ConstantTimeCompare([]byte(attempt.CredentialID), []byte(creds.Fingerprint.CredentialID)) == 1
	case MethodPassword:
		return attempt.Password != "" && creds.Password != nil &&
			s.hasher.Verify(attempt.Password, creds.Password.Hash, creds.Password.Salt)
	default:
		return false
	}
}

