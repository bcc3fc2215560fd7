package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Aswath1709/task-manager-app/modules/docstore"
	"github.com/Aswath1709/task-manager-app/modules/search"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Config controls the reconciliation sweep.
type Config struct {
	ReindexInterval time.Duration
	ReindexOnStart  bool
}

// Module exposes the task engine as request-reply services.
type Module struct {
	cfg        Config
	docs       *docstore.Module
	index      *search.Module
	engine     *Engine
	reconciler *Reconciler
	logger     types.Logger
}

var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the tasks module over the store and index modules,
// which must be registered and started before it.
func NewModule(cfg Config, docs *docstore.Module, index *search.Module, logger types.Logger) *Module {
	return &Module{cfg: cfg, docs: docs, index: index, logger: logger}
}

func (m *Module) Name() string {
	return "tasks"
}

func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreate, json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreate, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGet, json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGet, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceList, json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceList, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdate, json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdate, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDelete, json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDelete, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceSearch, json.Unmarshal, json.Marshal, m.searchTasks,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceSearch, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceReindex, json.Unmarshal, json.Marshal, m.reindex,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceReindex, err)
	}

	m.logger.Info("Registered task services",
		"services", []string{ServiceCreate, ServiceGet, ServiceList, ServiceUpdate, ServiceDelete, ServiceSearch, ServiceReindex})
	return nil
}

// Start ensures the tasks collection and builds the engine.
func (m *Module) Start(ctx context.Context) error {
	store := m.docs.Store()
	if store == nil {
		return errors.New("tasks: document store not started")
	}
	index := m.index.Index()
	if index == nil {
		return errors.New("tasks: search index not started")
	}

	if err := store.EnsureCollection(ctx, Collection); err != nil {
		return fmt.Errorf("failed to ensure tasks collection: %w", err)
	}

	m.engine = NewEngine(NewTaskStore(store), index, m.logger)
	m.reconciler = NewReconciler(m.engine, m.cfg.ReindexInterval, m.cfg.ReindexOnStart, m.logger)
	m.reconciler.Start()

	m.logger.Info("Tasks module started", "reconciler", m.reconciler.Enabled())
	return nil
}

func (m *Module) Stop(ctx context.Context) error {
	if m.reconciler != nil {
		if err := m.reconciler.Stop(ctx); err != nil {
			return err
		}
	}
	m.logger.Info("Tasks module stopped")
	return nil
}

func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.engine == nil {
		return mono.HealthStatus{Healthy: false, Message: "engine not initialized"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"reindex_interval": m.cfg.ReindexInterval.String(),
		},
	}
}
