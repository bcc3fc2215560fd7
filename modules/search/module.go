package search

import (
	"context"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// Module owns the Redis connection behind the search index.
type Module struct {
	cfg    Config
	index  *Index
	logger types.Logger
}

var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new search module.
func NewModule(cfg Config, logger types.Logger) *Module {
	if cfg.Index == "" {
		cfg.Index = "tasks"
	}
	return &Module{cfg: cfg, logger: logger}
}

func (m *Module) Name() string {
	return "search"
}

// Start connects to Redis and ensures the index exists. An unreachable Redis
// is logged, not fatal.
func (m *Module) Start(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         m.cfg.RedisAddr,
		Password:     m.cfg.RedisPassword,
		DB:           m.cfg.RedisDB,
		PoolSize:     20,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	m.index = New(client, m.cfg.Index)

	if err := m.index.Ensure(ctx); err != nil {
		m.logger.Warn("Search index unavailable at startup", "addr", m.cfg.RedisAddr, "error", err)
		return nil
	}
	m.logger.Info("Search index ready", "addr", m.cfg.RedisAddr, "index", m.cfg.Index)
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.index == nil {
		return nil
	}
	if err := m.index.Close(); err != nil {
		m.logger.Error("Failed to close search index", "error", err)
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	m.index = nil
	m.logger.Info("Search index closed")
	return nil
}

// Index returns the index handle, or nil before Start.
func (m *Module) Index() *Index {
	return m.index
}

func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.index == nil {
		return mono.HealthStatus{Healthy: false, Message: "search index not initialized"}
	}
	if err := m.index.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("search index ping failed: %v", err),
		}
	}
	stats := m.index.GetStats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"index":    m.cfg.Index,
			"upserts":  stats.Upserts,
			"removes":  stats.Removes,
			"searches": stats.Searches,
			"errors":   stats.Errors,
		},
	}
}
