package services

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Josh-Mantel/MCP-F1/internal/auth"
	"github.com/Josh-Mantel/MCP-F1/internal/config"
	"github.com/Josh-Mantel/MCP-F1/internal/connections"
	"github.com/Josh-Mantel/MCP-F1/internal/infrastructure/ergast"
	"github.com/Josh-Mantel/MCP-F1/internal/infrastructure/redis"
	"github.com/Josh-Mantel/MCP-F1/internal/metrics"
	"github.com/Josh-Mantel/MCP-F1/internal/services/cache"
	"github.com/Josh-Mantel/MCP-F1/internal/services/f1"
	"github.com/Josh-Mantel/MCP-F1/internal/services/oauth"
	"github.com/Josh-Mantel/MCP-F1/internal/services/tools"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	cacheService *cache.Service
	connections  *connections.Manager
	f1Service    *f1.Service
	metrics      metrics.Recorder
	oauthService *oauth.Service
	redisService *redis.Service
	toolExecutor *tools.ToolExecutor
	toolService  *tools.Service
}

// InitializeServices builds every service from the environment. Redis is
// optional; without it responses are cached in memory.
func InitializeServices(metricsEnabled bool) (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	recorder := metrics.Init(metricsEnabled)
	log.Info().Bool("enabled", metricsEnabled).Msg("Initializing metrics")

	// Initialize Redis service (optional)
	redisService := redis.NewService(config.GetRedisConfig())
	log.Info().Bool("available", redisService != nil).Msg("Initializing Redis service")

	ergastConfig := config.GetErgastConfig()
	cacheService := cache.NewService(redisService, ergastConfig.CacheTTL, recorder)
	log.Info().Str("backend", cacheService.Backend()).Msg("Initializing cache service")

	ergastService := ergast.NewService(ergastConfig, cacheService, recorder)
	f1Service := f1.NewService(ergastService, config.GetStreamInterval())
	log.Info().Msg("Initializing F1 data service")

	oauthService, err := oauth.NewService(auth.NewTokenStore(), config.GetClientConfig())
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize OAuth service")
		return nil, fmt.Errorf("failed to initialize oauth service: %w", err)
	}
	log.Info().Msg("Initializing OAuth service")

	toolService := tools.NewService(config.GetToolsConfig())
	toolExecutor := tools.NewToolExecutor(f1Service, toolService, recorder)
	log.Info().Int("tools", len(toolService.GetTools())).Msg("Initializing tool service")

	ws := config.GetWebSocketConfig()
	manager := connections.NewManager(connections.TimeoutsFor(ws.PongWait, ws.WriteWait))

	log.Info().Msg("All services initialized successfully")

	return &Services{
		cacheService: cacheService,
		connections:  manager,
		f1Service:    f1Service,
		metrics:      recorder,
		oauthService: oauthService,
		redisService: redisService,
		toolExecutor: toolExecutor,
		toolService:  toolService,
	}, nil
}

// Close releases the Redis connection, if any
func (s *Services) Close() error {
	if s.redisService == nil {
		return nil
	}
	return s.redisService.Close()
}

// GetCacheService returns the upstream response cache
func (s *Services) GetCacheService() *cache.Service {
	return s.cacheService
}

// GetConnectionManager returns the open stream registry
func (s *Services) GetConnectionManager() *connections.Manager {
	return s.connections
}

// GetF1Service returns the F1 data service
func (s *Services) GetF1Service() *f1.Service {
	return s.f1Service
}

// GetMetrics returns the metrics recorder
func (s *Services) GetMetrics() metrics.Recorder {
	return s.metrics
}

// GetOAuthService returns the authorization server
func (s *Services) GetOAuthService() *oauth.Service {
	return s.oauthService
}

// GetToolExecutor returns the tool executor
func (s *Services) GetToolExecutor() *tools.ToolExecutor {
	return s.toolExecutor
}

// GetToolService returns the tool service
func (s *Services) GetToolService() *tools.Service {
	return s.toolService
}
