package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	ModeMCP  = "mcp"
	ModeHTTP = "http"
	ModeBoth = "both"
)

// ServerConfig holds process level settings. Command line flags override it.
type ServerConfig struct {
	Mode           string
	Host           string
	Port           int
	BaseURL        string
	LogLevel       string
	MetricsEnabled bool
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Mode:           strings.ToLower(GetEnvOrDefault("SERVER_MODE", ModeMCP)),
		Host:           GetEnvOrDefault("HTTP_HOST", "localhost"),
		Port:           parseEnvInt("HTTP_PORT", 8080),
		BaseURL:        GetEnvOrDefault("BASE_URL", ""),
		LogLevel:       GetEnvOrDefault("LOG_LEVEL", "INFO"),
		MetricsEnabled: parseEnvBool("METRICS_ENABLED", true),
	}
}

// Addr is the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PublicURL is the externally visible base URL, derived from host and port
// unless BASE_URL is set.
func (c ServerConfig) PublicURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return fmt.Sprintf("http://%s", c.Addr())
}

// ValidMode reports whether mode is one of mcp, http or both
func ValidMode(mode string) bool {
	switch mode {
	case ModeMCP, ModeHTTP, ModeBoth:
		return true
	}
	return false
}

// ServesHTTP reports whether the HTTP server should run
func (c ServerConfig) ServesHTTP() bool {
	return c.Mode == ModeHTTP || c.Mode == ModeBoth
}

// ServesMCP reports whether the stdio MCP server should run
func (c ServerConfig) ServesMCP() bool {
	return c.Mode == ModeMCP || c.Mode == ModeBoth
}

// WebSocketConfig holds keep-alive settings for /f1/ws
type WebSocketConfig struct {
	PongWait  time.Duration
	WriteWait time.Duration
}

func GetWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		PongWait:  parseEnvDuration("WS_PONG_WAIT", 30*time.Second),
		WriteWait: parseEnvDuration("WS_WRITE_WAIT", 10*time.Second),
	}
}
