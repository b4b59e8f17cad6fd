package config

import (
	"strings"
	"time"

	"github.com/Josh-Mantel/MCP-F1/pkg/logger"
)

// Rate limit keys, one per protected endpoint group
const (
	LimitAuthorize = "authorize"
	LimitToken     = "token"
	LimitStream    = "stream"
	LimitTools     = "tools"
)

type RateLimitConfig struct {
	Enabled    bool
	MaxHits    int
	Window     time.Duration
	TrustProxy bool // key on X-Forwarded-For instead of the peer address
}

// default requests per minute
var defaultLimits = map[string]int{
	LimitAuthorize: 30,
	LimitToken:     30,
	LimitStream:    10,
	LimitTools:     120,
}

// GetRateLimitConfig reads RATELIMIT_<KEY> (requests per RATELIMIT_WINDOW)
// for key. Limiting is off unless RATELIMIT_ENABLED is true. Forwarded
// client addresses are only honoured with RATELIMIT_TRUST_PROXY=true.
func GetRateLimitConfig(key string) RateLimitConfig {
	hits, known := defaultLimits[key]
	if !known {
		logger.Warn(logger.CONFIG, "No rate limit config found for key: %s", key)
		return RateLimitConfig{}
	}

	return RateLimitConfig{
		Enabled:    parseEnvBool("RATELIMIT_ENABLED", false),
		MaxHits:    parseEnvInt("RATELIMIT_"+strings.ToUpper(key), hits),
		Window:     parseEnvDuration("RATELIMIT_WINDOW", time.Minute),
		TrustProxy: parseEnvBool("RATELIMIT_TRUST_PROXY", false),
	}
}
