package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/serroba/linkgate/internal/auth"
	"github.com/serroba/linkgate/internal/middleware"
	"go.uber.org/zap"
)

// Authenticator sets up credentials and exchanges them for sessions.
type Authenticator interface {
	Setup(ctx context.Context, req auth.SetupRequest) error
	Authenticate(ctx context.Context, attempt auth.Attempt) (string, error)
}

// AuthRecorder is told about credential changes and authentication attempts.
type AuthRecorder interface {
	CredentialsUpdated(ctx context.Context, hasPassword, hasFingerprint bool, clientIP string)
	AuthAttempted(ctx context.Context, method string, success bool, clientIP string)
}

type authPayload struct {
	Type       string `json:"type"`
	Credential *struct {
		ID string `json:"id"`
	} `json:"credential"`
	Password string `json:"password"`
}

type setupPayload struct {
	AdminKey    string                      `json:"admin_key"`
	Password    *string                     `json:"password"`
	Fingerprint *auth.FingerprintCredential `json:"fingerprint"`
}

// AuthHandler serves the admin setup and authentication endpoints.
type AuthHandler struct {
	service  Authenticator
	pages    PageRenderer
	recorder AuthRecorder
	title    string
	logger   *zap.Logger
}

// NewAuthHandler creates an auth handler. title names the service on the setup page.
func NewAuthHandler(
	service Authenticator,
	pages PageRenderer,
	recorder AuthRecorder,
	title string,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		service:  service,
		pages:    pages,
		recorder: recorder,
		title:    title,
		logger:   logger,
	}
}

func (h *AuthHandler) SetupForm(_ context.Context, _ *struct{}) (*HTMLResponse, error) {
	body, err := h.pages.Setup(h.title, setupPath)
	if err != nil {
		h.logger.Error("failed to render setup page", zap.Error(err))

		return nil, apiError(http.StatusInternalServerError, "internal server error")
	}

	return &HTMLResponse{ContentType: htmlContentType, Body: body}, nil
}

func (h *AuthHandler) Setup(ctx context.Context, req *RawRequest) (*SetupResponse, error) {
	var payload setupPayload
	if err := json.Unmarshal(req.RawBody, &payload); err != nil {
		return nil, apiError(http.StatusBadRequest, invalidRequestMessage)
	}

	err := h.service.Setup(ctx, auth.SetupRequest{
		AdminKey:    payload.AdminKey,
		Password:    payload.Password,
		Fingerprint: payload.Fingerprint,
	})

	switch {
	case err == nil:
	case errors.Is(err, auth.ErrUnauthorized):
		return nil, apiError(http.StatusUnauthorized, "Invalid admin key")
	case errors.Is(err, auth.ErrNoFactor):
		return nil, apiError(http.StatusBadRequest, "A password or fingerprint is required")
	default:
		h.logger.Error("failed to save credentials", zap.Error(err))

		return nil, apiError(http.StatusInternalServerError, "Failed to save credentials")
	}

	hasPassword := payload.Password != nil && *payload.Password != ""
	h.recorder.CredentialsUpdated(ctx, hasPassword, payload.Fingerprint != nil, clientIPFrom(ctx))

	resp := &SetupResponse{}
	resp.Body.Success = true
	resp.Body.Message = "Credentials saved successfully"

	return resp, nil
}

func (h *AuthHandler) Authenticate(ctx context.Context, req *RawRequest) (*AuthResponse, error) {
	var payload authPayload
	if err := json.Unmarshal(req.RawBody, &payload); err != nil {
		return nil, apiError(http.StatusBadRequest, invalidRequestMessage)
	}

	attempt := auth.Attempt{
		Method:   auth.Method(payload.Type),
		Password: payload.Password,
	}
	if payload.Credential != nil {
		attempt.CredentialID = payload.Credential.ID
	}

	token, err := h.service.Authenticate(ctx, attempt)

	switch {
	case err == nil:
		h.recorder.AuthAttempted(ctx, payload.Type, true, clientIPFrom(ctx))
	case errors.Is(err, auth.ErrAuthenticationFailed):
		h.recorder.AuthAttempted(ctx, payload.Type, false, clientIPFrom(ctx))

		return nil, apiError(http.StatusUnauthorized, "Authentication failed")
	case errors.Is(err, auth.ErrNotConfigured):
		return nil, apiError(http.StatusInternalServerError,
			"Authentication not configured. Please contact administrator.")
	default:
		h.logger.Error("authentication failed unexpectedly", zap.Error(err))

		return nil, apiError(http.StatusInternalServerError, "internal server error")
	}

	resp := &AuthResponse{}
	resp.Body.Success = true
	resp.Body.SessionToken = token
	resp.Body.Message = "Authentication successful"

	return resp, nil
}

func clientIPFrom(ctx context.Context) string {
	meta, _ := middleware.MetaFrom(ctx)

	return meta.ClientIP
}
