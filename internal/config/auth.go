package config

import (
	"crypto/rand"
	"sync"

	"github.com/Josh-Mantel/MCP-F1/pkg/logger"
)

const minJWTSecretLength = 16

var (
	jwtSecretMu sync.RWMutex
	jwtSecret   []byte
)

// GetJWTSecret returns the key that signs access tokens. It is resolved on
// first use so that values from .env are seen. Without JWT_SECRET a random
// per-process key is generated and tokens do not survive a restart.
func GetJWTSecret() []byte {
	jwtSecretMu.RLock()
	secret := jwtSecret
	jwtSecretMu.RUnlock()
	if secret != nil {
		return secret
	}

	jwtSecretMu.Lock()
	defer jwtSecretMu.Unlock()
	if jwtSecret == nil {
		jwtSecret = resolveJWTSecret()
	}
	return jwtSecret
}

func resolveJWTSecret() []byte {
	if secret := GetEnvOrDefault("JWT_SECRET", ""); secret != "" {
		if len(secret) < minJWTSecretLength {
			logger.Warn(logger.CONFIG, "JWT_SECRET is shorter than %d bytes", minJWTSecretLength)
		}
		return []byte(secret)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("config: unable to generate JWT secret: " + err.Error())
	}
	logger.Warn(logger.CONFIG, "JWT_SECRET not set, using a random secret for this process")
	return secret
}

// SetJWTSecret replaces the signing key and returns a function restoring the
// previous one. Tests use it with t.Cleanup.
func SetJWTSecret(secret []byte) func() {
	jwtSecretMu.Lock()
	previous := jwtSecret
	jwtSecret = secret
	jwtSecretMu.Unlock()

	return func() {
		jwtSecretMu.Lock()
		jwtSecret = previous
		jwtSecretMu.Unlock()
	}
}

// GetJWTIssuer returns the "iss" claim put on access tokens
func GetJWTIssuer() string {
	return GetEnvOrDefault("JWT_ISSUER", "f1-mcp-server")
}
