package config

import (
	"time"

	"github.com/Josh-Mantel/MCP-F1/pkg/logger"
)

// RedisConfig locates the optional response cache. An empty URL keeps the
// cache in process memory.
type RedisConfig struct {
	URL         string // host:port or redis:// URL
	Password    string
	DialTimeout time.Duration
}

func GetRedisConfig() RedisConfig {
	cfg := RedisConfig{
		URL:         GetEnvOrDefault("REDIS_URL", ""),
		Password:    GetEnvOrDefault("REDIS_PASSWORD", ""),
		DialTimeout: parseEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
	}

	if cfg.URL == "" {
		logger.Info(logger.CONFIG, "REDIS_URL not set, responses will be cached in memory")
	} else {
		logger.Debug(logger.CONFIG, "Redis cache configured")
	}
	return cfg
}
