package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/linkgate/internal/health"
	"github.com/serroba/linkgate/internal/middleware"
	"github.com/serroba/linkgate/internal/ratelimit"
	"go.uber.org/zap"
)

// RouterConfig configures NewRouter.
type RouterConfig struct {
	Title   string
	Version string
	CORS    bool
}

// Deps are the handlers and services NewRouter wires together.
type Deps struct {
	Links    *LinkHandler
	Auth     *AuthHandler
	Health   *health.Handler
	Homepage http.Handler
	Pages    PageRenderer
	Limiter  ratelimit.Limiter
	Denials  middleware.DenialRecorder
	Logger   *zap.Logger
}

// NewRouter builds the chi mux and Huma API serving every route.
//
// OPTIONS is answered before routing. Requests that match no route are
// redispatched by their first path segment: POSTs create links, anything
// else resolves the segment as a short key.
func NewRouter(cfg RouterConfig, deps Deps) (*chi.Mux, huma.API) {
	router := chi.NewMux()
	router.Use(middleware.CORS(cfg.CORS))

	config := huma.DefaultConfig(cfg.Title, cfg.Version)
	config.DocsPath = ""
	config.CreateHooks = nil

	api := humachi.New(router, config)
	api.UseMiddleware(middleware.RequestMeta(api))
	api.UseMiddleware(middleware.RateLimiter(api, deps.Limiter, deps.Denials, deps.Logger))

	RegisterRoutes(api, deps.Links, deps.Auth)
	health.RegisterRoutes(api, deps.Health)

	router.Get("/", deps.Homepage.ServeHTTP)

	fallback := redispatch(router, deps.Pages, deps.Logger)
	router.NotFound(fallback)
	router.MethodNotAllowed(fallback)

	return router, api
}

// redispatch rewrites an unmatched request onto the route its first path
// segment selects and serves it again. A request that would land on itself
// gets the 404 page.
func redispatch(router *chi.Mux, pages PageRenderer, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		method, path := DispatchTarget(r.Method, r.URL.Path)
		if path == "" || (method == r.Method && path == r.URL.Path) {
			writeNotFound(w, pages, logger)

			return
		}

		// A fresh routing context makes chi route the clone from scratch.
		rewritten := r.Clone(context.WithValue(r.Context(), chi.RouteCtxKey, nil))
		rewritten.Method = method
		rewritten.URL.Path = path
		rewritten.URL.RawPath = ""
		rewritten.RequestURI = ""

		router.ServeHTTP(w, rewritten)
	}
}

// DispatchTarget maps a request onto the method and path of the route that
// handles it. An empty path means no route applies.
func DispatchTarget(method, path string) (string, string) {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })

	if len(segments) == 0 {
		if method == http.MethodPost {
			return http.MethodPost, "/"
		}

		return http.MethodGet, "/"
	}

	switch {
	case segments[0] == "admin":
		if len(segments) > 1 && segments[1] == "setup" && (method == http.MethodGet || method == http.MethodPost) {
			return method, setupPath
		}

		return method, ""
	case segments[0] == "auth" && method == http.MethodPost:
		return http.MethodPost, authPath
	case method == http.MethodPost:
		return http.MethodPost, shortenPath
	default:
		return http.MethodGet, "/" + segments[0]
	}
}

func writeJSONError(w http.ResponseWriter, e *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}
