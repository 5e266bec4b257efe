package handlers

import (
	"github.com/danielgtaylor/huma/v2"
)

const htmlContentType = "text/html;charset=UTF-8"

// CreateLinkRequest is the request for creating a short link.
type CreateLinkRequest struct {
	Authorization string `doc:"Bearer session token" header:"Authorization"`
	Body          struct {
		_            struct{} `additionalProperties:"true" json:"-"`
		URL          string   `doc:"The URL to shorten"         example:"https://example.com/very/long/path" json:"url,omitempty"`
		CustomSlug   string   `doc:"Optional custom short key"  example:"promo"                              json:"custom_slug,omitempty"`
		SessionToken string   `doc:"Session token from /auth"                                                json:"sessionToken,omitempty"`
	}
}

// CreateLinkResponse is the response for a successfully created short link.
type CreateLinkResponse struct {
	Body struct {
		Status   int    `doc:"Always 200"             example:"200"                          json:"status"`
		Key      string `doc:"Path of the short link" example:"/abc123"                      json:"key"`
		ShortURL string `doc:"The full short URL"     example:"http://localhost:8888/abc123" json:"shortUrl"`
	}
}

// RedirectRequest is the request for resolving a short key.
type RedirectRequest struct {
	Key      string `doc:"The short key" example:"abc123" path:"key"`
	RawQuery string
}

// Resolve captures the query string so it can be forwarded to the destination.
func (r *RedirectRequest) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	r.RawQuery = u.RawQuery

	return nil
}

var _ huma.Resolver = (*RedirectRequest)(nil)

// RedirectResponse is either a redirect or an HTML page.
type RedirectResponse struct {
	Status      int
	Location    string `header:"Location"`
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// HTMLResponse is a rendered HTML page.
type HTMLResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// RawRequest carries an undecoded JSON body. Setup and auth decode it
// themselves so null factors and malformed input map to their own errors.
type RawRequest struct {
	RawBody []byte
}

// SetupResponse is the response for a successful credential setup.
type SetupResponse struct {
	Body struct {
		Success bool   `json:"success" example:"true"`
		Message string `json:"message" example:"Credentials saved successfully"`
	}
}

// AuthResponse is the response for a successful authentication.
type AuthResponse struct {
	Body struct {
		Success      bool   `json:"success"      example:"true"`
		SessionToken string `json:"sessionToken" doc:"Token to pass when creating links"`
		Message      string `json:"message"      example:"Authentication successful"`
	}
}
