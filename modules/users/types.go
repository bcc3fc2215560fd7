package users

import (
	"context"

	"github.com/Aswath1709/task-manager-app/domain/errs"
	"github.com/Aswath1709/task-manager-app/domain/user"
)

// Service names registered by the users module.
const (
	ServiceRegister      = "register"
	ServiceLogin         = "login"
	ServiceValidateToken = "validate-token"
	ServiceGetUser       = "get-user"
)

// ErrorInfo carries a taxonomy error across the request-reply boundary.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	return &ErrorInfo{Code: errs.Code(err), Message: err.Error()}
}

func (e *ErrorInfo) Err() error {
	if e == nil {
		return nil
	}
	return errs.FromCode(e.Code, e.Message)
}

// RegisterRequest is the request for the register service.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse is the response for the register service.
type RegisterResponse struct {
	User  *user.User `json:"user,omitempty"`
	Error *ErrorInfo `json:"error,omitempty"`
}

// LoginRequest is the request for the login service.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the response for the login service.
type LoginResponse struct {
	Token *user.Token `json:"token,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
}

// ValidateTokenRequest is the request for the validate-token service.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse is the response for the validate-token service.
type ValidateTokenResponse struct {
	Claims *user.Claims `json:"claims,omitempty"`
	Error  *ErrorInfo   `json:"error,omitempty"`
}

// GetUserRequest is the request for the get-user service.
type GetUserRequest struct {
	UserID string `json:"userId"`
}

// GetUserResponse is the response for the get-user service.
type GetUserResponse struct {
	User  *user.User `json:"user,omitempty"`
	Error *ErrorInfo `json:"error,omitempty"`
}

// UserPort is the contract driving adapters use to reach the users module.
type UserPort interface {
	Register(ctx context.Context, username, password string) (user.User, error)
	Login(ctx context.Context, username, password string) (user.Token, error)
	ValidateToken(ctx context.Context, token string) (user.Claims, error)
	GetUser(ctx context.Context, userID string) (user.User, error)
}
