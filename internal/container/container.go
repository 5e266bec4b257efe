package container

import (
	"fmt"
	"strings"
	"time"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"

	AuditNone  = "none"
	AuditRedis = "redis"
)

// Options is the service configuration. Every field can be set by flag or by
// the matching SERVICE_* environment variable.
type Options struct {
	Port        int    `default:"8888"                  help:"Port to listen on"                               short:"p"`
	BaseURL     string `default:""                      help:"Public origin of short links (defaults to localhost)" name:"base-url"`
	LogFormat   string `default:"json"                  help:"Log format: json or console"                     name:"log-format"`
	FrontendURL string `default:""                      help:"Origin whose page is served at /"                name:"frontend-url"`
	CORS        bool   `default:"true"                  help:"Send permissive CORS headers"                    name:"cors"`

	Store        string `default:"memory"                help:"Store backend: memory, redis or postgres"        short:"s"`
	RedisAddr    string `default:"localhost:6379"        help:"Redis server address"                            short:"r" name:"redis-addr"`
	RedisPrefix  string `default:""                      help:"Prefix for every redis key"                      name:"redis-prefix"`
	PostgresDSN  string `default:"postgres://localhost:5432/linkgate" help:"Postgres connection string"         name:"postgres-dsn"`
	CacheTTL     string `default:"0s"                    help:"Redis read cache TTL in front of postgres, 0 disables" name:"cache-ttl"`
	StoreTimeout string `default:"2s"                    help:"Deadline for each store call"                    name:"store-timeout"`

	Dedup          bool   `default:"true"  help:"Reuse keys for identical URLs"                  name:"dedup"`
	CustomSlugs    bool   `default:"true"  help:"Allow caller-chosen slugs"                      name:"custom-slugs"`
	SlugAlphabet   string `default:""      help:"Alphabet for generated keys"                    name:"slug-alphabet"`
	SlugLength     int    `default:"6"     help:"Length of generated keys"                       name:"slug-length" short:"c"`
	MaxSlugLength  int    `default:"50"    help:"Maximum custom slug length"                     name:"max-slug-length"`
	ReservedSlugs  string `default:""      help:"Comma separated reserved slugs, empty keeps the built-in list" name:"reserved-slugs"`
	BlockedDomains string `default:""      help:"Comma separated destination hosts to refuse"    name:"blocked-domains"`
	MaxKeyAttempts int    `default:"16"    help:"Generated key collisions tolerated per request" name:"max-key-attempts"`

	SafeBrowsingKey  string `default:""      help:"Safe Browsing API key, empty disables checks" name:"safe-browsing-key"`
	SafetyFailClosed bool   `default:"false" help:"Warn when the safety check cannot answer"     name:"safety-fail-closed"`
	NoRef            bool   `default:"false" help:"Redirect through a no-referrer page"          name:"no-ref"`

	AuthEnabled       bool   `default:"true"   help:"Serve the setup and auth endpoints"      name:"auth-enabled"`
	RequireAuth       bool   `default:"false"  help:"Require a session to create links"       name:"require-auth"`
	RequireFactor     bool   `default:"false"  help:"Reject setup without a password or fingerprint" name:"require-factor"`
	AdminKey          string `default:""       help:"Secret required to replace credentials"  name:"admin-key"`
	PBKDF2Iterations  int    `default:"100000" help:"PBKDF2 iteration count"                  name:"pbkdf2-iterations"`
	SaltLength        int    `default:"32"     help:"Password salt length in bytes"           name:"salt-length"`
	RateLimitAttempts int    `default:"5"      help:"Attempts allowed per window"             name:"rate-limit-attempts"`
	RateLimitWindow   string `default:"15m"    help:"Rate limit window"                       name:"rate-limit-window"`
	SessionTimeout    string `default:"24h"    help:"Session lifetime"                        name:"session-timeout"`

	AuditSink  string `default:"none"    help:"Audit event sink: none or redis"       name:"audit-sink"`
	AuditGroup string `default:"auditor" help:"Redis stream consumer group for audit" name:"audit-group"`
}

// durations holds the parsed duration options.
type durations struct {
	cacheTTL        time.Duration
	storeTimeout    time.Duration
	rateLimitWindow time.Duration
	sessionTimeout  time.Duration
}

func (o *Options) durations() (durations, error) {
	var (
		d   durations
		err error
	)

	fields := []struct {
		name     string
		value    string
		dst      *time.Duration
		zeroable bool
	}{
		{"cache-ttl", o.CacheTTL, &d.cacheTTL, true},
		{"store-timeout", o.StoreTimeout, &d.storeTimeout, false},
		{"rate-limit-window", o.RateLimitWindow, &d.rateLimitWindow, false},
		{"session-timeout", o.SessionTimeout, &d.sessionTimeout, false},
	}

	for _, f := range fields {
		if *f.dst, err = time.ParseDuration(f.value); err != nil {
			return durations{}, fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}

		if *f.dst < 0 || (*f.dst == 0 && !f.zeroable) {
			return durations{}, fmt.Errorf("invalid %s %q: must be positive", f.name, f.value)
		}
	}

	return d, nil
}

func (o *Options) baseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// splitList splits a comma separated option, dropping blanks.
func splitList(value string) []string {
	var out []string

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
