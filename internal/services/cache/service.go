package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Josh-Mantel/MCP-F1/internal/infrastructure/redis"
	"github.com/Josh-Mantel/MCP-F1/internal/metrics"
	"github.com/Josh-Mantel/MCP-F1/pkg/logger"
)

const keyPrefix = "f1:cache:"

// ErrCacheMiss is returned when a key is absent or expired
var ErrCacheMiss = errors.New("cache: miss")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Name() string
}

type RedisStore struct {
	redisService *redis.Service
}

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore expires entries lazily on Get
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	now   func() time.Time
}

type Service struct {
	store   Store
	ttl     time.Duration
	metrics metrics.Recorder
}

func NewService(redisService *redis.Service, ttl time.Duration, recorder metrics.Recorder) *Service {
	logger.Info(logger.SERVICE, "Initialising response cache")

	if recorder == nil {
		recorder = metrics.NewNoopMetrics()
	}

	var store Store
	if redisService != nil {
		logger.Info(logger.SERVICE, "Using Redis for response caching")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisService.Ping(ctx); err != nil {
			logger.Error(logger.SERVICE, "Redis connection failed: %v", err)
			logger.Warn(logger.SERVICE, "Falling back to in-memory response caching")
			store = NewMemoryStore()
		} else {
			store = &RedisStore{redisService: redisService}
		}
	} else {
		logger.Info(logger.SERVICE, "Using in-memory response caching")
		store = NewMemoryStore()
	}

	return &Service{store: store, ttl: ttl, metrics: recorder}
}

// NewServiceWithStore is used when the caller already has a Store
func NewServiceWithStore(store Store, ttl time.Duration, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.NewNoopMetrics()
	}
	return &Service{store: store, ttl: ttl, metrics: recorder}
}

// Backend names the store in use: "redis" or "memory"
func (s *Service) Backend() string {
	return s.store.Name()
}

func (s *Service) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.store.Get(ctx, key)
	s.metrics.RecordCacheLookup(s.store.Name(), err == nil)
	return value, err
}

func (s *Service) Set(ctx context.Context, key string, value []byte) error {
	return s.store.Set(ctx, key, value, s.ttl)
}

func (s *Service) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, key)
}

// GetWithFetch returns the cached value for key, calling fetch and caching its
// result on a miss. Store failures are logged and never hide a successful fetch.
func (s *Service) GetWithFetch(ctx context.Context, key string, fetch func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	value, err := s.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		logger.Warn(logger.SERVICE, "Cache read failed for %s: %v", key, err)
	}

	value, err = fetch(ctx)
	if err != nil {
		return nil, err
	}

	if s.ttl > 0 {
		if err := s.Set(ctx, key, value); err != nil {
			logger.Warn(logger.SERVICE, "Cache write failed for %s: %v", key, err)
		}
	}
	return value, nil
}

// Redis Store implementation
func (rs *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := rs.redisService.Get(ctx, keyPrefix+key)
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func (rs *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return rs.redisService.Set(ctx, keyPrefix+key, value, ttl)
}

func (rs *RedisStore) Delete(ctx context.Context, key string) error {
	return rs.redisService.Delete(ctx, keyPrefix+key)
}

func (rs *RedisStore) Name() string {
	return "redis"
}

// Memory Store implementation
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]cacheItem),
		now:   time.Now,
	}
}

func (ms *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	ms.mu.RLock()
	item, exists := ms.items[key]
	ms.mu.RUnlock()

	if !exists {
		return nil, ErrCacheMiss
	}
	if ms.now().After(item.expiresAt) {
		_ = ms.Delete(ctx, key)
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

func (ms *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[key] = cacheItem{value: value, expiresAt: ms.now().Add(ttl)}
	return nil
}

func (ms *MemoryStore) Delete(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.items, key)
	return nil
}

func (ms *MemoryStore) Name() string {
	return "memory"
}
