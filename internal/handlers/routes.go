package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkgate/internal/ratelimit"
)

const (
	setupPath   = "/admin/setup"
	authPath    = "/auth"
	shortenPath = "/shorten"
)

// RegisterRoutes registers the link, setup and auth operations. Setup and
// auth attempts are rate limited per client IP. A nil authHandler leaves
// the admin routes out.
func RegisterRoutes(api huma.API, links *LinkHandler, authHandler *AuthHandler) {
	if authHandler != nil {
		registerAuthRoutes(api, authHandler)
	}

	for _, path := range []string{"/", shortenPath} {
		huma.Register(api, huma.Operation{
			OperationID: "create-link" + operationSuffix(path),
			Method:      http.MethodPost,
			Path:        path,
			Summary:     "Create short URL",
			Description: "Issues a short key for the URL, or claims the custom slug when one is given.",
			Tags:        []string{"Links"},
		}, links.CreateLink)
	}

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{key}",
		Summary:     "Resolve a short key",
		Description: "Redirects to the destination, or serves an interstitial or warning page.",
		Tags:        []string{"Links"},
	}, links.Redirect)
}

func registerAuthRoutes(api huma.API, authHandler *AuthHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "setup-form",
		Method:      http.MethodGet,
		Path:        setupPath,
		Summary:     "Credential setup form",
		Tags:        []string{"Admin"},
		Hidden:      true,
	}, authHandler.SetupForm)

	huma.Register(api, huma.Operation{
		OperationID: "setup",
		Method:      http.MethodPost,
		Path:        setupPath,
		Summary:     "Replace administrator credentials",
		Description: "Requires the administrator key. Stores a PBKDF2 password hash and/or a fingerprint credential reference.",
		Tags:        []string{"Admin"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Action: ratelimit.ActionSetup},
		},
	}, authHandler.Setup)

	huma.Register(api, huma.Operation{
		OperationID: "authenticate",
		Method:      http.MethodPost,
		Path:        authPath,
		Summary:     "Exchange a credential for a session token",
		Tags:        []string{"Auth"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Action: ratelimit.ActionAuth},
		},
	}, authHandler.Authenticate)
}

func operationSuffix(path string) string {
	if path == "/" {
		return ""
	}

	return "-" + path[1:]
}
