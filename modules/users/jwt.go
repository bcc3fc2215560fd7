package users

import (
	"errors"
	"fmt"
	"time"

	"github.com/Aswath1709/task-manager-app/domain/errs"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token is malformed or badly signed.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", errs.ErrUnauthorized)
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = fmt.Errorf("%w: token has expired", errs.ErrUnauthorized)
)

// JWTConfig holds token signing settings.
type JWTConfig struct {
	SecretKey string
	Issuer    string
	TTL       time.Duration
}

// JWTClaims carries the user id as subject plus the username.
type JWTClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTManager signs and validates HS256 access tokens.
type JWTManager struct {
	config JWTConfig
	now    func() time.Time
}

func NewJWTManager(config JWTConfig) *JWTManager {
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	return &JWTManager{config: config, now: time.Now}
}

// Generate issues a token for the user.
func (m *JWTManager) Generate(userID, username string) (string, error) {
	now := m.now()
	claims := JWTClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.SecretKey))
}

// Validate parses tokenString and returns its claims.
func (m *JWTManager) Validate(tokenString string) (*JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(m.now)}
	if m.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.config.SecretKey), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TTLSeconds returns the token lifetime in seconds.
func (m *JWTManager) TTLSeconds() int64 {
	return int64(m.config.TTL.Seconds())
}
