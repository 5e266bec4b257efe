package shortener_test

import (
	"strings"
	"testing"

	"github.com/serroba/linkgate/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerator(t *testing.T) {
	t.Run("generates keys of the requested length from the alphabet", func(t *testing.T) {
		for _, length := range []int{shortener.DefaultKeyLength, 8, 10, 20} {
			gen, err := shortener.NewGenerator(shortener.DefaultAlphabet, length)
			require.NoError(t, err)

			key := gen()

			assert.Len(t, key, length)

			for _, c := range key {
				assert.Contains(t, shortener.DefaultAlphabet, string(c))
			}
		}
	})

	t.Run("default alphabet has no confusing characters", func(t *testing.T) {
		for _, c := range []string{"o", "O", "L", "l", "0", "1", "9", "g", "q", "V", "v", "U", "u", "I"} {
			assert.NotContains(t, shortener.DefaultAlphabet, c)
		}
	})

	t.Run("successive keys differ", func(t *testing.T) {
		gen, err := shortener.NewGenerator(shortener.DefaultAlphabet, 8)
		require.NoError(t, err)

		assert.NotEqual(t, gen(), gen())
	})

	t.Run("rejects an unusable alphabet", func(t *testing.T) {
		_, err := shortener.NewGenerator("", 6)

		assert.Error(t, err)
	})
}

func TestValidateCustom(t *testing.T) {
	reserved := shortener.ReservedSet([]string{"api", "admin", "www", "mail", "ftp", "localhost", "password"})

	t.Run("accepts well formed slugs", func(t *testing.T) {
		for _, slug := range []string{"my-link", "my_link", "myLink123", "a", strings.Repeat("a", 50)} {
			assert.True(t, shortener.ValidateCustom(slug, 50, reserved), slug)
		}
	})

	t.Run("rejects malformed, oversized and reserved slugs", func(t *testing.T) {
		for _, slug := range []string{"my link", "my@link", "my.link", "", strings.Repeat("a", 51), "api", "ADMIN", "Password", "ñandu"} {
			assert.False(t, shortener.ValidateCustom(slug, 50, reserved), slug)
		}
	})

	t.Run("respects a tighter max length", func(t *testing.T) {
		assert.True(t, shortener.ValidateCustom("abcd", 4, reserved))
		assert.False(t, shortener.ValidateCustom("abcde", 4, reserved))
	})
}

func TestReservedSet(t *testing.T) {
	set := shortener.ReservedSet([]string{" API ", "", "Admin"})

	assert.Len(t, set, 2)
	assert.Contains(t, set, "api")
	assert.Contains(t, set, "admin")
}

func TestFingerprint(t *testing.T) {
	t.Run("is deterministic and wide", func(t *testing.T) {
		a := shortener.Fingerprint("https://example.com/a")

		assert.Equal(t, a, shortener.Fingerprint("https://example.com/a"))
		assert.Len(t, a, 128)
	})

	t.Run("does not normalize", func(t *testing.T) {
		assert.NotEqual(t,
			shortener.Fingerprint("https://example.com/a"),
			shortener.Fingerprint("https://example.com/a/"),
		)
		assert.NotEqual(t,
			shortener.Fingerprint("https://Example.com/a"),
			shortener.Fingerprint("https://example.com/a"),
		)
	})
}

func TestURLValidator(t *testing.T) {
	v := shortener.NewURLValidator([]string{"evil.example"})

	t.Run("accepts http and https urls", func(t *testing.T) {
		for _, u := range []string{
			"https://example.com",
			"http://example.com",
			"https://www.example.com/path",
			"https://example.com/path?query=value",
			"https://example.com:8443/x",
		} {
			assert.NoError(t, v.Validate(u), u)
		}
	})

	t.Run("rejects other inputs", func(t *testing.T) {
		for _, u := range []string{"not-a-url", "ftp://example.com", "example.com", "", "http://localhost/x", "https://"} {
			assert.ErrorIs(t, v.Validate(u), shortener.ErrInvalidURL, u)
		}
	})

	t.Run("rejects blocked hosts case-insensitively", func(t *testing.T) {
		assert.ErrorIs(t, v.Validate("https://EVIL.example/login"), shortener.ErrBlockedDomain)
		assert.NoError(t, v.Validate("https://sub.evil.example/login"))
	})
}
