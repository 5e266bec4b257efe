package middleware

import (
	"context"
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// Meta describes the client behind a request.
type Meta struct {
	ClientIP  string
	UserAgent string
}

type metaKey struct{}

// WithMeta returns a copy of ctx carrying meta.
func WithMeta(ctx context.Context, meta Meta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

// MetaFrom returns the Meta stored in ctx, if any.
func MetaFrom(ctx context.Context) (Meta, bool) {
	meta, ok := ctx.Value(metaKey{}).(Meta)

	return meta, ok
}

// RequestMeta is a middleware that stores the client IP and user-agent in
// the request context.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := Meta{
			ClientIP:  ClientIP(ctx.Header, ctx.RemoteAddr()),
			UserAgent: ctx.Header("User-Agent"),
		}

		next(huma.WithContext(ctx, WithMeta(ctx.Context(), meta)))
	}
}

// ClientIP identifies the client from proxy headers, falling back to the
// connection's remote address. CF-Connecting-IP wins, then the first
// X-Forwarded-For hop, then X-Real-IP.
func ClientIP(header func(string) string, remoteAddr string) string {
	if ip := strings.TrimSpace(header("CF-Connecting-IP")); ip != "" {
		return ip
	}

	if xff := header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(header("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}

	return host
}

func clientIP(ctx huma.Context) string {
	if meta, ok := MetaFrom(ctx.Context()); ok && meta.ClientIP != "" {
		return meta.ClientIP
	}

	return ClientIP(ctx.Header, ctx.RemoteAddr())
}
