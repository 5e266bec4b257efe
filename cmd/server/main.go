package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/serroba/linkgate/internal/container"
	"github.com/serroba/linkgate/internal/kv"
	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func registerPackages(injector *do.Injector, options *container.Options) {
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.StorePackage(injector)
	container.ShortenerPackage(injector)
	container.AuthPackage(injector)
	container.RateLimitPackage(injector)
	container.SafetyPackage(injector)
	container.AuditPackage(injector)
	container.HTTPPackage(injector)
}

func newServer(injector *do.Injector, port int) (*http.Server, error) {
	router, err := do.Invoke[*chi.Mux](injector)
	if err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}, nil
}

func main() {
	// Optional; SERVICE_* variables from .env fill in unset options.
	_ = godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		registerPackages(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)

		var server *http.Server

		hooks.OnStart(func() {
			srv, err := newServer(injector, options.Port)
			if err != nil {
				logger.Fatal("failed to build server", zap.Error(err))
			}

			server = srv

			if kvStore, err := do.Invoke[*kv.TimeoutStore](injector); err == nil {
				if err := kvStore.Ping(context.Background()); err != nil {
					logger.Warn("store is not reachable yet", zap.String("store", options.Store), zap.Error(err))
				}
			}

			logger.Info("server starting",
				zap.Int("port", options.Port),
				zap.String("store", options.Store),
				zap.String("audit_sink", options.AuditSink),
				zap.Bool("auth_enabled", options.AuthEnabled),
				zap.Bool("safety_enabled", options.SafeBrowsingKey != ""),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if server != nil {
				if err := server.Shutdown(ctx); err != nil {
					logger.Error("server shutdown error", zap.Error(err))
				}
			}

			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")

			_ = logger.Sync()
		})
	})

	cli.Run()
}
