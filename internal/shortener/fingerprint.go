package shortener

import (
	"crypto/sha512"
	"encoding/hex"
)

// Fingerprint returns the hex SHA-512 digest of the exact URL string.
// No normalization is applied: "https://a.example/" and "https://a.example" differ.
func Fingerprint(rawURL string) string {
	sum := sha512.Sum512([]byte(rawURL))

	return hex.EncodeToString(sum[:])
}

// indexPrefix keeps fingerprint entries out of the slug keyspace; slugs never
// contain a colon.
const indexPrefix = "url:"

// IndexKey is the store key holding the short key issued for rawURL.
func IndexKey(rawURL string) string {
	return indexPrefix + Fingerprint(rawURL)
}
