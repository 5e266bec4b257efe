package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const maxHomepageBytes = 4 << 20

// Homepage serves the front-end origin's page at the root path.
type Homepage struct {
	frontendURL string
	client      *http.Client
	pages       PageRenderer
	logger      *zap.Logger
}

// NewHomepage proxies GET requests at the root to frontendURL. An empty URL
// serves the 404 page. A nil client gets a 10 second timeout.
func NewHomepage(frontendURL string, client *http.Client, pages PageRenderer, logger *zap.Logger) *Homepage {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Homepage{
		frontendURL: frontendURL,
		client:      client,
		pages:       pages,
		logger:      logger,
	}
}

func (h *Homepage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.frontendURL == "" {
		writeNotFound(w, h.pages, h.logger)

		return
	}

	body, err := h.fetch(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch homepage", zap.String("url", h.frontendURL), zap.Error(err))
		writeJSONError(w, apiError(http.StatusBadGateway, "Failed to load homepage"))

		return
	}

	writeHTML(w, http.StatusOK, body)
}

func (h *Homepage) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.frontendURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("frontend returned %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxHomepageBytes))
}

// writeNotFound serves the 404 page, or the JSON error model when the page
// cannot be rendered.
func writeNotFound(w http.ResponseWriter, pages PageRenderer, logger *zap.Logger) {
	body, err := pages.NotFound()
	if err != nil {
		logger.Error("failed to render page", zap.Error(err))
		writeJSONError(w, apiError(http.StatusNotFound, "Not found"))

		return
	}

	writeHTML(w, http.StatusNotFound, body)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
