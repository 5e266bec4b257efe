// Package health reports whether the service and its link store are reachable.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkgate/internal/kv"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	healthy        = "healthy"
	unhealthy      = "unhealthy"

	pingTimeout = 2 * time.Second
)

// Handler handles health check operations.
type Handler struct {
	store kv.Pinger
}

// NewHandler creates a health handler. A nil store is always reported healthy.
func NewHandler(store kv.Pinger) *Handler {
	return &Handler{store: store}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status string `json:"status" enum:"ok,degraded"`
		Store  string `json:"store"  enum:"healthy,unhealthy"`
	}
}

// Check pings the store with a short deadline.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = statusOK
	resp.Body.Store = healthy

	if h.store == nil {
		return resp, nil
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		resp.Body.Status = statusDegraded
		resp.Body.Store = unhealthy
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Service health",
	}, h.Check)
}
