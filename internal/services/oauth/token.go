package oauth

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Josh-Mantel/MCP-F1/pkg/logger"
)

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		logger.Debug(logger.OAUTH, "No Authorization header found")
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		logger.Warn(logger.OAUTH, "Malformed Authorization header")
		return ""
	}

	return parts[1]
}

// TokenValidationResult is what the resource guard hands to protected handlers
type TokenValidationResult struct {
	Valid     bool
	TokenID   string
	ClientID  string
	ExpiresAt time.Time
	Scopes    []string
}

// HasScope reports whether the validated token carries scope
func (r *TokenValidationResult) HasScope(scope string) bool {
	for _, s := range r.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

type CustomClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// ParseScope splits a space separated scope string
func ParseScope(scope string) []string {
	return strings.Fields(scope)
}
