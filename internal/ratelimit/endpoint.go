package ratelimit

import "github.com/danielgtaylor/huma/v2"

// Actions counted by the limiter.
const (
	ActionAuth  = "auth"
	ActionSetup = "setup"
)

// MetadataKey is the operation metadata key holding an EndpointConfig.
const MetadataKey = "rateLimit"

// EndpointConfig attaches a rate limit to a Huma operation. Operations
// without one are not limited.
type EndpointConfig struct {
	// Action names the counter the operation's attempts are recorded under.
	Action string

	// Disabled skips rate limiting for the endpoint.
	Disabled bool
}

// GetEndpointConfig extracts the EndpointConfig from operation metadata, if present.
func GetEndpointConfig(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
