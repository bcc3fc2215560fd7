package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Aswath1709/task-manager-app/domain/errs"
	"github.com/Aswath1709/task-manager-app/domain/user"
)

// ErrInvalidCredentials is returned for an unknown user or wrong password.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", errs.ErrUnauthorized)

const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

// UserService handles registration and login.
type UserService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	jwt    *JWTManager
}

func NewUserService(repo *UserRepository, hasher *PasswordHasher, jwt *JWTManager) *UserService {
	return &UserService{repo: repo, hasher: hasher, jwt: jwt}
}

// Register creates an account. The first holder of a username keeps it; a
// second registration fails with errs.ErrDuplicateKey.
func (s *UserService) Register(ctx context.Context, username, password string) (user.User, error) {
	if strings.TrimSpace(username) == "" {
		return user.User{}, errs.Invalid("username", "must not be empty")
	}
	if len(password) < minPasswordLength {
		return user.User{}, errs.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	// bcrypt ignores everything past 72 bytes.
	if len(password) > maxPasswordLength {
		return user.User{}, errs.Invalid("password", fmt.Sprintf("must be at most %d bytes", maxPasswordLength))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.repo.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, errs.ErrDuplicateKey) {
			return user.User{}, fmt.Errorf("username %q already exists: %w", username, errs.ErrDuplicateKey)
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// Authenticate checks the credentials and issues an access token.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (user.Token, error) {
	u, hash, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return user.Token{}, ErrInvalidCredentials
		}
		return user.Token{}, fmt.Errorf("failed to find user: %w", err)
	}
	if !s.hasher.Verify(password, hash) {
		return user.Token{}, ErrInvalidCredentials
	}

	token, err := s.jwt.Generate(u.ID, u.Username)
	if err != nil {
		return user.Token{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return user.Token{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.jwt.TTLSeconds(),
	}, nil
}

// ValidateToken returns the identity carried by an access token.
func (s *UserService) ValidateToken(_ context.Context, token string) (user.Claims, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return user.Claims{}, err
	}
	return user.Claims{UserID: claims.Subject, Username: claims.Username}, nil
}

// GetUser returns the account without its password hash.
func (s *UserService) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.repo.FindByID(ctx, id)
}
