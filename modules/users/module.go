package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Aswath1709/task-manager-app/modules/docstore"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Config holds users module settings.
type Config struct {
	JWT        JWTConfig
	BcryptCost int
}

// Module provides registration, login and token validation services.
type Module struct {
	cfg     Config
	docs    *docstore.Module
	service *UserService
	logger  types.Logger
}

var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

func NewModule(cfg Config, docs *docstore.Module, logger types.Logger) *Module {
	return &Module{cfg: cfg, docs: docs, logger: logger}
}

func (m *Module) Name() string {
	return "users"
}

func (m *Module) Start(ctx context.Context) error {
	store := m.docs.Store()
	if store == nil {
		return errors.New("users: document store not started")
	}
	if err := store.EnsureCollection(ctx, Collection); err != nil {
		return fmt.Errorf("failed to ensure users collection: %w", err)
	}

	m.service = NewUserService(
		NewUserRepository(store),
		NewPasswordHasher(m.cfg.BcryptCost),
		NewJWTManager(m.cfg.JWT),
	)
	m.logger.Info("Users module started", "issuer", m.cfg.JWT.Issuer)
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Users module stopped")
	return nil
}

func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{Healthy: false, Message: "service not initialized"}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRegister, json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRegister, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceLogin, json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceLogin, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceValidateToken, json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceValidateToken, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetUser, json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetUser, err)
	}
	m.logger.Info("Registered user services",
		"services", []string{ServiceRegister, ServiceLogin, ServiceValidateToken, ServiceGetUser})
	return nil
}

func (m *Module) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	u, err := m.service.Register(ctx, req.Username, req.Password)
	if err != nil {
		return RegisterResponse{Error: errorInfo(err)}, nil
	}
	m.logger.Info("User registered", "user_id", u.ID)
	return RegisterResponse{User: &u}, nil
}

func (m *Module) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	tok, err := m.service.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return LoginResponse{Error: errorInfo(err)}, nil
	}
	return LoginResponse{Token: &tok}, nil
}

func (m *Module) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		return ValidateTokenResponse{Error: errorInfo(err)}, nil
	}
	return ValidateTokenResponse{Claims: &claims}, nil
}

func (m *Module) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	u, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return GetUserResponse{Error: errorInfo(err)}, nil
	}
	return GetUserResponse{User: &u}, nil
}
