package users

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Aswath1709/task-manager-app/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// userAdapter implements UserPort over the users module's service container.
type userAdapter struct {
	container mono.ServiceContainer
}

func NewUserAdapter(container mono.ServiceContainer) UserPort {
	if container == nil {
		panic("user adapter requires non-nil ServiceContainer")
	}
	return &userAdapter{container: container}
}

func (a *userAdapter) Register(ctx context.Context, username, password string) (user.User, error) {
	req := RegisterRequest{Username: username, Password: password}
	var resp RegisterResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, ServiceRegister, json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return user.User{}, fmt.Errorf("%s service call failed: %w", ServiceRegister, err)
	}
	if err := resp.Error.Err(); err != nil {
		return user.User{}, err
	}
	if resp.User == nil {
		return user.User{}, fmt.Errorf("%s service returned no user", ServiceRegister)
	}
	return *resp.User, nil
}

func (a *userAdapter) Login(ctx context.Context, username, password string) (user.Token, error) {
	req := LoginRequest{Username: username, Password: password}
	var resp LoginResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, ServiceLogin, json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return user.Token{}, fmt.Errorf("%s service call failed: %w", ServiceLogin, err)
	}
	if err := resp.Error.Err(); err != nil {
		return user.Token{}, err
	}
	if resp.Token == nil {
		return user.Token{}, fmt.Errorf("%s service returned no token", ServiceLogin)
	}
	return *resp.Token, nil
}

func (a *userAdapter) ValidateToken(ctx context.Context, token string) (user.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, ServiceValidateToken, json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return user.Claims{}, fmt.Errorf("%s service call failed: %w", ServiceValidateToken, err)
	}
	if err := resp.Error.Err(); err != nil {
		return user.Claims{}, err
	}
	if resp.Claims == nil {
		return user.Claims{}, fmt.Errorf("%s service returned no claims", ServiceValidateToken)
	}
	return *resp.Claims, nil
}

func (a *userAdapter) GetUser(ctx context.Context, userID string) (user.User, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, ServiceGetUser, json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return user.User{}, fmt.Errorf("%s service call failed: %w", ServiceGetUser, err)
	}
	if err := resp.Error.Err(); err != nil {
		return user.User{}, err
	}
	if resp.User == nil {
		return user.User{}, fmt.Errorf("%s service returned no user", ServiceGetUser)
	}
	return *resp.User, nil
}
