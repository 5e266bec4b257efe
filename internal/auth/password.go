package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	DefaultIterations = 100000
	DefaultSaltLength = 32

	hashLength = 32
)

// Hasher derives password hashes with PBKDF2-HMAC-SHA256.
type Hasher struct {
	iterations int
	saltLength int
}

// NewHasher creates a hasher. Non-positive values fall back to the defaults.
func NewHasher(iterations, saltLength int) *Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	if saltLength <= 0 {
		saltLength = DefaultSaltLength
	}

	return &Hasher{iterations: iterations, saltLength: saltLength}
}

// NewSalt returns saltLength random bytes, hex encoded. The encoded string
// itself is the salt fed to the KDF.
func (h *Hasher) NewSalt() (string, error) {
	b := make([]byte, h.saltLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// Hash derives the hex encoded hash of password with salt.
func (h *Hasher) Hash(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), h.iterations, hashLength, sha256.New)

	return hex.EncodeToString(key)
}

// Verify reports whether password hashes to hash under salt.
func (h *Hasher) Verify(password, hash, salt string) bool {
	return subtle.ConstantTimeCompare([]byte(h.Hash(password, salt)), []byte(hash)) == 1
}
