package docstore

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Module owns the document store handle for the lifetime of the application.
type Module struct {
	cfg    Config
	store  *Store
	logger types.Logger
}

var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new document store module.
func NewModule(cfg Config, logger types.Logger) *Module {
	return &Module{cfg: cfg, logger: logger}
}

func (m *Module) Name() string {
	return "docstore"
}

// Start opens the database. Collections are ensured by the modules that own them.
func (m *Module) Start(_ context.Context) error {
	if m.store != nil {
		return nil
	}
	store, err := Open(m.cfg)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	m.store = store
	m.logger.Info("Document store opened", "path", m.cfg.Path)
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.store == nil {
		return nil
	}
	err := m.store.Close()
	m.store = nil
	if err != nil {
		m.logger.Error("Failed to close document store", "error", err)
		return fmt.Errorf("failed to close document store: %w", err)
	}
	m.logger.Info("Document store closed")
	return nil
}

// Store returns the open store, or nil before Start.
func (m *Module) Store() *Store {
	return m.store
}

func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{Healthy: false, Message: "document store not initialized"}
	}
	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("document store ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"path": m.cfg.Path},
	}
}
