package middleware

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkgate/internal/ratelimit"
	"go.uber.org/zap"
)

// DenialRecorder is told about every request the limiter turns away.
type DenialRecorder interface {
	RateLimited(ctx context.Context, action, clientIP string)
}

// RateLimiter returns a Huma middleware that counts attempts on operations
// carrying a ratelimit.EndpointConfig, keyed by client IP and the configured
// action. Operations without one pass straight through.
func RateLimiter(
	api huma.API,
	limiter ratelimit.Limiter,
	recorder DenialRecorder,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		cfg := ratelimit.GetEndpointConfig(ctx)
		if cfg == nil || cfg.Disabled || cfg.Action == "" {
			next(ctx)

			return
		}

		ip := clientIP(ctx)

		allowed, err := limiter.Allow(ctx.Context(), ip, cfg.Action)
		if err != nil {
			logger.Error("rate limit check failed", zap.String("action", cfg.Action), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if !allowed {
			logger.Warn("rate limit exceeded",
				zap.String("action", cfg.Action),
				zap.String("client_ip", ip),
			)
			recorder.RateLimited(ctx.Context(), cfg.Action, ip)

			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, deniedMessage(cfg.Action))

			return
		}

		next(ctx)
	}
}

func deniedMessage(action string) string {
	switch action {
	case ratelimit.ActionAuth:
		return "Too many authentication attempts. Please try again later."
	case ratelimit.ActionSetup:
		return "Too many setup attempts. Please try again later."
	default:
		return "rate limit exceeded"
	}
}
