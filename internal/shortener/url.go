package shortener

import (
	"net/url"
	"regexp"
	"strings"
)

// hostPattern requires a dotted host made of word characters and hyphens.
var hostPattern = regexp.MustCompile(`^([\w-]+\.)+[\w-]+$`)

// URLValidator checks submitted destinations before they are shortened.
type URLValidator struct {
	blocked map[string]struct{}
}

// NewURLValidator creates a validator rejecting the given hosts (exact, case-insensitive match).
func NewURLValidator(blockedDomains []string) *URLValidator {
	return &URLValidator{blocked: ReservedSet(blockedDomains)}
}

// Validate returns ErrInvalidURL for anything that is not an absolute http(s)
// URL with a dotted host, and ErrBlockedDomain for blocked hosts.
func (v *URLValidator) Validate(rawURL string) error {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return ErrInvalidURL
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ErrInvalidURL
	}

	host := u.Hostname()
	if !hostPattern.MatchString(host) {
		return ErrInvalidURL
	}

	if _, ok := v.blocked[strings.ToLower(host)]; ok {
		return ErrBlockedDomain
	}

	return nil
}
