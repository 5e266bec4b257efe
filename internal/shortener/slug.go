package shortener

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jaevor/go-nanoid"
)

// DefaultAlphabet excludes characters that are easy to misread (0/O, 1/l/I, ...).
const DefaultAlphabet = "ABCDEFGHJKMNPQRSTWXYZabcdefhijkmnprstwxyz2345678"

// DefaultKeyLength is the length of generated keys.
const DefaultKeyLength = 6

// DefaultMaxSlugLength bounds custom slugs.
const DefaultMaxSlugLength = 50

// DefaultReserved lists slugs that collide with routes or look official.
var DefaultReserved = []string{
	"api", "admin", "www", "mail", "ftp", "localhost", "password", "auth",
	"shorten", "health", "help", "support", "contact", "about",
}

var errGeneratorConfig = errors.New("key alphabet needs at least 2 characters and length at least 1")

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Generator produces a random key on each call.
type Generator func() string

// NewGenerator returns a generator of keys of the given length drawn uniformly from alphabet.
func NewGenerator(alphabet string, length int) (Generator, error) {
	if len(alphabet) < 2 || length < 1 {
		return nil, errGeneratorConfig
	}

	gen, err := nanoid.CustomASCII(alphabet, length)
	if err != nil {
		return nil, err
	}

	return Generator(gen), nil
}

// ValidateCustom reports whether slug is an acceptable custom key: only
// [A-Za-z0-9_-], between 1 and maxLength characters, and not a reserved word
// in any letter case.
func ValidateCustom(slug string, maxLength int, reserved map[string]struct{}) bool {
	if len(slug) < 1 || len(slug) > maxLength {
		return false
	}

	if !slugPattern.MatchString(slug) {
		return false
	}

	_, taken := reserved[strings.ToLower(slug)]

	return !taken
}

// ReservedSet lower-cases words into a lookup set for ValidateCustom.
func ReservedSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))

	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}

		set[strings.ToLower(w)] = struct{}{}
	}

	return set
}
