package config

import "time"

const DefaultErgastBaseURL = "https://api.jolpi.ca/ergast/f1"

// ErgastConfig controls the upstream F1 data source
type ErgastConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

func GetErgastConfig() ErgastConfig {
	return ErgastConfig{
		BaseURL:  GetEnvOrDefault("ERGAST_BASE_URL", DefaultErgastBaseURL),
		Timeout:  parseEnvDuration("ERGAST_TIMEOUT", 15*time.Second),
		CacheTTL: parseEnvDuration("F1_CACHE_TTL", time.Hour),
	}
}

// GetStreamInterval is the pause between season stream events
func GetStreamInterval() time.Duration {
	return parseEnvDuration("STREAM_INTERVAL", 0)
}
