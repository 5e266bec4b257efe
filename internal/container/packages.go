package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/linkgate/internal/audit"
	"github.com/serroba/linkgate/internal/auth"
	"github.com/serroba/linkgate/internal/handlers"
	"github.com/serroba/linkgate/internal/health"
	"github.com/serroba/linkgate/internal/kv"
	"github.com/serroba/linkgate/internal/messaging"
	"github.com/serroba/linkgate/internal/pages"
	"github.com/serroba/linkgate/internal/ratelimit"
	"github.com/serroba/linkgate/internal/safety"
	"github.com/serroba/linkgate/internal/shortener"
	"github.com/serroba/linkgate/internal/store"
	"go.uber.org/zap"
)

const (
	serviceTitle   = "linkgate"
	serviceVersion = "1.0.0"
)

// RedisClient closes the wrapped client on injector shutdown.
type RedisClient struct {
	redis.UniversalClient
}

func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// Postgres closes the wrapped pool on injector shutdown.
type Postgres struct {
	*pgxpool.Pool
}

func (p *Postgres) Shutdown() error {
	p.Close()

	return nil
}

// HTTP bundles the router with the API registered on it.
type HTTP struct {
	Router *chi.Mux
	API    huma.API
}

func options(i *do.Injector) (*Options, durations, error) {
	opts := do.MustInvoke[*Options](i)

	d, err := opts.durations()

	return opts, d, err
}

func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.LogFormat {
		case "console":
			return zap.NewDevelopment()
		case "json", "":
			return zap.NewProduction()
		default:
			return nil, fmt.Errorf("unknown log format %q", opts.LogFormat)
		}
	})
}

func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{opts.RedisAddr},
		})

		return &RedisClient{UniversalClient: client}, nil
	})
}

func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)

		pool, err := pgxpool.New(context.Background(), opts.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		return &Postgres{Pool: pool}, nil
	})
}

// StorePackage provides the kv.Store selected by --store, bounded by
// --store-timeout. Postgres gets its schema applied and, with a positive
// --cache-ttl, a redis read cache in front.
func StorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*kv.TimeoutStore, error) {
		opts, d, err := options(i)
		if err != nil {
			return nil, err
		}

		var backend kv.Store

		switch opts.Store {
		case StoreMemory:
			backend = store.NewMemoryStore()
		case StoreRedis:
			backend = store.NewRedisStore(do.MustInvoke[*RedisClient](i), opts.RedisPrefix)
		case StorePostgres:
			pg := store.NewPostgresStore(do.MustInvoke[*Postgres](i).Pool)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := pg.Migrate(ctx); err != nil {
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}

			backend = pg
			if d.cacheTTL > 0 {
				backend = store.NewRedisCacheStore(pg, do.MustInvoke[*RedisClient](i), d.cacheTTL)
			}
		default:
			return nil, fmt.Errorf("unknown store backend %q", opts.Store)
		}

		return kv.WithTimeout(backend, d.storeTimeout), nil
	})
}

func ShortenerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Registry, error) {
		opts := do.MustInvoke[*Options](i)

		alphabet := opts.SlugAlphabet
		if alphabet == "" {
			alphabet = shortener.DefaultAlphabet
		}

		gen, err := shortener.NewGenerator(alphabet, opts.SlugLength)
		if err != nil {
			return nil, err
		}

		reserved := shortener.DefaultReserved
		if words := splitList(opts.ReservedSlugs); len(words) > 0 {
			reserved = words
		}

		return shortener.NewRegistry(do.MustInvoke[*kv.TimeoutStore](i), gen, shortener.Options{
			Dedup:         opts.Dedup,
			CustomSlugs:   opts.CustomSlugs,
			MaxSlugLength: opts.MaxSlugLength,
			Reserved:      shortener.ReservedSet(reserved),
			MaxAttempts:   opts.MaxKeyAttempts,
		}), nil
	})

	do.Provide(i, func(i *do.Injector) (*shortener.URLValidator, error) {
		opts := do.MustInvoke[*Options](i)

		return shortener.NewURLValidator(splitList(opts.BlockedDomains)), nil
	})
}

func AuthPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*auth.Service, error) {
		opts, d, err := options(i)
		if err != nil {
			return nil, err
		}

		logger := do.MustInvoke[*zap.Logger](i)
		kvStore := do.MustInvoke[*kv.TimeoutStore](i)

		if opts.AuthEnabled && opts.AdminKey == "" {
			logger.Warn("no admin key configured, credential setup is disabled")
		}

		return auth.NewService(
			auth.Config{AdminKey: opts.AdminKey, RequireFactor: opts.RequireFactor},
			auth.NewCredentialStore(kvStore),
			auth.NewHasher(opts.PBKDF2Iterations, opts.SaltLength),
			auth.NewSessionManager(kvStore, d.sessionTimeout),
			logger,
		), nil
	})
}

// RateLimitPackage provides an in-process fixed window limiter. The janitor
// pruning expired windows is stopped on injector shutdown.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*store.RateLimitMemoryStore, error) {
		return store.NewRateLimitMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (*store.Janitor, error) {
		_, d, err := options(i)
		if err != nil {
			return nil, err
		}

		return do.MustInvoke[*store.RateLimitMemoryStore](i).StartJanitor(d.rateLimitWindow), nil
	})

	do.Provide(i, func(i *do.Injector) (ratelimit.Limiter, error) {
		opts, d, err := options(i)
		if err != nil {
			return nil, err
		}

		_ = do.MustInvoke[*store.Janitor](i)

		return ratelimit.NewFixedWindowLimiter(
			do.MustInvoke[*store.RateLimitMemoryStore](i),
			int64(opts.RateLimitAttempts),
			d.rateLimitWindow,
		), nil
	})
}

func SafetyPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*safety.Gate, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		policy := safety.FailOpen
		if opts.SafetyFailClosed {
			policy = safety.FailClosed
		}

		if opts.SafeBrowsingKey == "" {
			return safety.NewGate(nil, policy, logger), nil
		}

		return safety.NewGate(safety.NewSafeBrowsing(opts.SafeBrowsingKey, "", nil), policy, logger), nil
	})
}

// AuditPackage provides the audit recorder. With --audit-sink=redis events
// go to redis streams, otherwise they are discarded.
func AuditPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (message.Publisher, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.AuditSink {
		case AuditNone, "":
			return messaging.DiscardPublisher{}, nil
		case AuditRedis:
			publisher, err := redisstream.NewPublisher(
				redisstream.PublisherConfig{Client: do.MustInvoke[*RedisClient](i)},
				messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i)),
			)
			if err != nil {
				return nil, fmt.Errorf("create audit publisher: %w", err)
			}

			return messaging.ClosingPublisher{Publisher: publisher}, nil
		default:
			return nil, fmt.Errorf("unknown audit sink %q", opts.AuditSink)
		}
	})

	do.Provide(i, func(i *do.Injector) (*audit.Recorder, error) {
		return audit.NewRecorder(do.MustInvoke[message.Publisher](i), do.MustInvoke[*zap.Logger](i)), nil
	})
}

func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*pages.Renderer, error) {
		return pages.New()
	})

	do.Provide(i, func(i *do.Injector) (*HTTP, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		renderer := do.MustInvoke[*pages.Renderer](i)
		recorder := do.MustInvoke[*audit.Recorder](i)
		authService := do.MustInvoke[*auth.Service](i)
		kvStore := do.MustInvoke[*kv.TimeoutStore](i)

		links := handlers.NewLinkHandler(
			do.MustInvoke[*shortener.Registry](i),
			do.MustInvoke[*shortener.URLValidator](i),
			authService,
			do.MustInvoke[*safety.Gate](i),
			renderer,
			recorder,
			handlers.LinkOptions{
				BaseURL:     opts.baseURL(),
				RequireAuth: opts.AuthEnabled && opts.RequireAuth,
				NoReferrer:  opts.NoRef,
			},
			logger,
		)

		var authHandler *handlers.AuthHandler
		if opts.AuthEnabled {
			authHandler = handlers.NewAuthHandler(authService, renderer, recorder, serviceTitle, logger)
		}

		router, api := handlers.NewRouter(
			handlers.RouterConfig{Title: serviceTitle, Version: serviceVersion, CORS: opts.CORS},
			handlers.Deps{
				Links:    links,
				Auth:     authHandler,
				Health:   health.NewHandler(kvStore),
				Homepage: handlers.NewHomepage(opts.FrontendURL, nil, renderer, logger),
				Pages:    renderer,
				Limiter:  do.MustInvoke[ratelimit.Limiter](i),
				Denials:  recorder,
				Logger:   logger,
			},
		)

		return &HTTP{Router: router, API: api}, nil
	})

	do.Provide(i, func(i *do.Injector) (*chi.Mux, error) {
		return do.MustInvoke[*HTTP](i).Router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		return do.MustInvoke[*HTTP](i).API, nil
	})
}

// ConsumerGroupPackage provides the audit consumers reading redis streams
// under the --audit-group consumer group.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        do.MustInvoke[*RedisClient](i),
				ConsumerGroup: opts.AuditGroup,
			},
			messaging.NewZapLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create audit subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		audit.NewLogSink(logger).Register(group, subscriber, logger)

		return group, nil
	})
}
