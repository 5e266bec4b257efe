package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/serroba/linkgate/internal/safety"
	"github.com/serroba/linkgate/internal/shortener"
	"go.uber.org/zap"
)

// LinkRegistry issues and resolves short keys.
type LinkRegistry interface {
	Issue(ctx context.Context, destination, customSlug string) (*shortener.Issued, error)
	Resolve(ctx context.Context, key string) (string, error)
}

// URLValidator checks a destination before it is shortened.
type URLValidator interface {
	Validate(raw string) error
}

// SessionVerifier checks session tokens.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) bool
}

// SafetyGate decides whether a redirect may proceed.
type SafetyGate interface {
	Allow(ctx context.Context, url string) (bool, safety.Verdict)
}

// LinkRecorder is told about issued links.
type LinkRecorder interface {
	LinkIssued(ctx context.Context, key string, custom, deduplicated bool)
}

// PageRenderer renders the HTML pages served by the handlers.
type PageRenderer interface {
	Setup(title, action string) ([]byte, error)
	Interstitial(destination string) ([]byte, error)
	Warning(destination string, unverified bool) ([]byte, error)
	NotFound() ([]byte, error)
}

// LinkOptions configures a LinkHandler.
type LinkOptions struct {
	BaseURL     string
	RequireAuth bool
	NoReferrer  bool
}

// LinkHandler creates short links and redirects them.
type LinkHandler struct {
	registry  LinkRegistry
	validator URLValidator
	sessions  SessionVerifier
	gate      SafetyGate
	pages     PageRenderer
	recorder  LinkRecorder
	opts      LinkOptions
	logger    *zap.Logger
}

// NewLinkHandler creates a link handler.
func NewLinkHandler(
	registry LinkRegistry,
	validator URLValidator,
	sessions SessionVerifier,
	gate SafetyGate,
	pages PageRenderer,
	recorder LinkRecorder,
	opts LinkOptions,
	logger *zap.Logger,
) *LinkHandler {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	return &LinkHandler{
		registry:  registry,
		validator: validator,
		sessions:  sessions,
		gate:      gate,
		pages:     pages,
		recorder:  recorder,
		opts:      opts,
		logger:    logger,
	}
}

func (h *LinkHandler) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error) {
	if h.opts.RequireAuth && !h.sessions.VerifySession(ctx, sessionToken(req)) {
		return nil, apiError(http.StatusUnauthorized, "Authentication required to create URLs")
	}

	if err := h.validator.Validate(req.Body.URL); err != nil {
		if errors.Is(err, shortener.ErrBlockedDomain) {
			return nil, apiError(http.StatusBadRequest, "Destination domain is blocked")
		}

		return nil, apiError(http.StatusBadRequest, "Invalid URL format")
	}

	issued, err := h.registry.Issue(ctx, req.Body.URL, req.Body.CustomSlug)
	if err != nil {
		return nil, h.issueError(err)
	}

	h.recorder.LinkIssued(ctx, issued.Key, issued.Custom, issued.Deduplicated)

	resp := &CreateLinkResponse{}
	resp.Body.Status = http.StatusOK
	resp.Body.Key = "/" + issued.Key
	resp.Body.ShortURL = h.opts.BaseURL + "/" + issued.Key

	return resp, nil
}

func (h *LinkHandler) issueError(err error) error {
	switch {
	case errors.Is(err, shortener.ErrCustomSlugDisabled):
		return apiError(http.StatusBadRequest, "Custom URLs are disabled")
	case errors.Is(err, shortener.ErrInvalidSlug):
		return apiError(http.StatusBadRequest, "Invalid custom slug format")
	case errors.Is(err, shortener.ErrSlugTaken):
		return apiError(http.StatusBadRequest, "Custom slug already exists")
	case errors.Is(err, shortener.ErrExhausted):
		h.logger.Error("key space exhausted", zap.Error(err))

		return apiError(http.StatusInternalServerError, "Could not allocate a short key")
	default:
		h.logger.Error("failed to save link", zap.Error(err))

		return apiError(http.StatusInternalServerError, "Failed to save URL")
	}
}

func (h *LinkHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	destination, err := h.registry.Resolve(ctx, req.Key)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return h.page(http.StatusNotFound, h.pages.NotFound)
		}

		h.logger.Error("failed to resolve link", zap.String("key", req.Key), zap.Error(err))

		return nil, apiError(http.StatusInternalServerError, "Failed to get URL")
	}

	location := destination
	if req.RawQuery != "" {
		location += "?" + req.RawQuery
	}

	if allowed, verdict := h.gate.Allow(ctx, location); !allowed {
		return h.page(http.StatusOK, func() ([]byte, error) {
			return h.pages.Warning(location, verdict == safety.VerdictUnknown)
		})
	}

	if h.opts.NoReferrer {
		return h.page(http.StatusOK, func() ([]byte, error) {
			return h.pages.Interstitial(location)
		})
	}

	return &RedirectResponse{Status: http.StatusFound, Location: location}, nil
}

func (h *LinkHandler) page(status int, render func() ([]byte, error)) (*RedirectResponse, error) {
	body, err := render()
	if err != nil {
		h.logger.Error("failed to render page", zap.Error(err))

		return nil, apiError(http.StatusInternalServerError, "internal server error")
	}

	return &RedirectResponse{Status: status, ContentType: htmlContentType, Body: body}, nil
}

// sessionToken prefers the body token and falls back to a bearer header.
func sessionToken(req *CreateLinkRequest) string {
	if req.Body.SessionToken != "" {
		return req.Body.SessionToken
	}

	const prefix = "Bearer "
	if len(req.Authorization) > len(prefix) && strings.EqualFold(req.Authorization[:len(prefix)], prefix) {
		return strings.TrimSpace(req.Authorization[len(prefix):])
	}

	return ""
}
