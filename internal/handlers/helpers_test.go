package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/serroba/linkgate/internal/auth"
	"github.com/serroba/linkgate/internal/handlers"
	"github.com/serroba/linkgate/internal/health"
	"github.com/serroba/linkgate/internal/pages"
	"github.com/serroba/linkgate/internal/ratelimit"
	"github.com/serroba/linkgate/internal/safety"
	"github.com/serroba/linkgate/internal/shortener"
	"github.com/serroba/linkgate/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testAdminKey = "admin-secret"
	testBaseURL  = "http://sho.rt"
)

type stubOracle struct {
	unsafe bool
	err    error
}

func (s *stubOracle) Lookup(context.Context, string) (bool, error) {
	return s.unsafe, s.err
}

type nopRecorder struct{}

func (nopRecorder) LinkIssued(context.Context, string, bool, bool)         {}
func (nopRecorder) CredentialsUpdated(context.Context, bool, bool, string) {}
func (nopRecorder) AuthAttempted(context.Context, string, bool, string)    {}
func (nopRecorder) RateLimited(context.Context, string, string)            {}

type serverOptions struct {
	requireAuth  bool
	authDisabled bool
	noRef        bool
	customSlugs  bool
	oracle       safety.Oracle
	policy       safety.Policy
	frontendURL  string
	pages        handlers.PageRenderer
	logger       *zap.Logger
}

type testServer struct {
	router *chi.Mux
	store  *store.MemoryStore
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()

	kvStore := store.NewMemoryStore()

	gen, err := shortener.NewGenerator(shortener.DefaultAlphabet, shortener.DefaultKeyLength)
	require.NoError(t, err)

	registry := shortener.NewRegistry(kvStore, gen, shortener.Options{
		Dedup:       true,
		CustomSlugs: opts.customSlugs,
	})

	authService := auth.NewService(
		auth.Config{AdminKey: testAdminKey},
		auth.NewCredentialStore(kvStore),
		auth.NewHasher(1000, 16),
		auth.NewSessionManager(kvStore, time.Hour),
		zap.NewNop(),
	)

	var renderer handlers.PageRenderer = pages.MustNew()
	if opts.pages != nil {
		renderer = opts.pages
	}

	logger := opts.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	gate := safety.NewGate(opts.oracle, opts.policy, zap.NewNop())

	links := handlers.NewLinkHandler(
		registry,
		shortener.NewURLValidator([]string{"blocked.example"}),
		authService,
		gate,
		renderer,
		nopRecorder{},
		handlers.LinkOptions{BaseURL: testBaseURL, RequireAuth: opts.requireAuth, NoReferrer: opts.noRef},
		zap.NewNop(),
	)

	var authHandler *handlers.AuthHandler
	if !opts.authDisabled {
		authHandler = handlers.NewAuthHandler(authService, renderer, nopRecorder{}, "linkgate", zap.NewNop())
	}

	router, _ := handlers.NewRouter(handlers.RouterConfig{Title: "linkgate", Version: "test", CORS: true}, handlers.Deps{
		Links:    links,
		Auth:     authHandler,
		Health:   health.NewHandler(nil),
		Homepage: handlers.NewHomepage(opts.frontendURL, nil, renderer, logger),
		Pages:    renderer,
		Limiter:  ratelimit.NewFixedWindowLimiter(store.NewRateLimitMemoryStore(), 5, time.Minute),
		Denials:  nopRecorder{},
		Logger:   logger,
	})

	return &testServer{router: router, store: kvStore}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "203.0.113.10:5555"

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())

	return out
}

func (s *testServer) setup(t *testing.T, password string) {
	t.Helper()

	w := s.do(t, http.MethodPost, "/admin/setup", map[string]any{"admin_key": testAdminKey, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func (s *testServer) login(t *testing.T, password string) string {
	t.Helper()

	w := s.do(t, http.MethodPost, "/auth", map[string]any{"type": "password", "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token, _ := decodeBody(t, w)["sessionToken"].(string)
	require.NotEmpty(t, token)

	return token
}
