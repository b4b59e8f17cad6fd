package config

import (
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	DefaultClientID    = "f1-mcp-client"
	DefaultRedirectURI = "http://localhost:8080/callback"
	ScopeF1Read        = "f1:read"

	defaultClientSecret = "f1-mcp-secret-key"
)

// ClientConfig is the single client registered with the authorization server
type ClientConfig struct {
	ID          string
	Secret      string
	RedirectURI string
	Scopes      []string // scopes the client may request
}

// GetClientConfig reads the registered client from the environment, falling
// back to the development client.
func GetClientConfig() ClientConfig {
	client := ClientConfig{
		ID:          GetEnvOrDefault("F1_CLIENT_ID", DefaultClientID),
		Secret:      GetEnvOrDefault("F1_CLIENT_SECRET", ""),
		RedirectURI: GetEnvOrDefault("F1_REDIRECT_URI", DefaultRedirectURI),
		Scopes:      cleanEmptyStrings(strings.Split(GetEnvOrDefault("F1_CLIENT_SCOPES", ScopeF1Read), ",")),
	}

	if client.Secret == "" {
		log.Warn().Str("client_id", client.ID).Msg("F1_CLIENT_SECRET not set, using the development secret")
		client.Secret = defaultClientSecret
	}
	if len(client.Scopes) == 0 {
		client.Scopes = []string{ScopeF1Read}
	}

	return client
}

// HasScope reports whether scope is one the client may request
func (c ClientConfig) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
