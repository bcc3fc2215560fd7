// Package config loads application settings from .env files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Aswath1709/task-manager-app/modules/docstore"
	"github.com/Aswath1709/task-manager-app/modules/search"
	"github.com/Aswath1709/task-manager-app/modules/tasks"
	"github.com/Aswath1709/task-manager-app/modules/users"
	"github.com/joho/godotenv"
)

// EnvFiles are read in order; a variable already set is never overridden.
var EnvFiles = []string{".env.local", ".env"}

const defaultJWTSecret = "change-me-in-production"

// Config is the full application configuration.
type Config struct {
	HTTPPort        int
	AdminUsernames  []string
	ShutdownTimeout time.Duration
	Docstore        docstore.Config
	Search          search.Config
	Tasks           tasks.Config
	Users           users.Config
}

// Load reads the env files, then the environment, and validates the result.
func Load() (*Config, error) {
	for _, file := range EnvFiles {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables and defaults.
func FromEnv() *Config {
	return &Config{
		HTTPPort:        getEnvInt("HTTP_PORT", 3000),
		AdminUsernames:  getEnvList("ADMIN_USERNAMES"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		Docstore: docstore.Config{
			Path:  getEnv("DOCSTORE_PATH", "tasks.db"),
			Debug: getEnvBool("DOCSTORE_DEBUG", false),
		},
		Search: search.Config{
			RedisAddr:     getEnv("SEARCH_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("SEARCH_REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("SEARCH_REDIS_DB", 0),
			Index:         getEnv("SEARCH_INDEX", "tasks"),
		},
		Tasks: tasks.Config{
			ReindexInterval: getEnvDuration("REINDEX_INTERVAL", 0),
			ReindexOnStart:  getEnvBool("REINDEX_ON_START", false),
		},
		Users: users.Config{
			JWT: users.JWTConfig{
				SecretKey: getEnv("JWT_SECRET_KEY", defaultJWTSecret),
				Issuer:    getEnv("JWT_ISSUER", "task-manager"),
				TTL:       getEnvDuration("JWT_TTL", time.Hour),
			},
			BcryptCost: getEnvInt("BCRYPT_COST", users.DefaultBcryptCost),
		},
	}
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT must be in 1..65535, got %d", c.HTTPPort))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout))
	}
	if strings.TrimSpace(c.Docstore.Path) == "" {
		errs = append(errs, errors.New("DOCSTORE_PATH must not be empty"))
	}
	if c.Search.RedisDB < 0 {
		errs = append(errs, fmt.Errorf("SEARCH_REDIS_DB must not be negative, got %d", c.Search.RedisDB))
	}
	if strings.TrimSpace(c.Search.Index) == "" {
		errs = append(errs, errors.New("SEARCH_INDEX must not be empty"))
	}
	if c.Tasks.ReindexInterval < 0 {
		errs = append(errs, fmt.Errorf("REINDEX_INTERVAL must not be negative, got %s", c.Tasks.ReindexInterval))
	}
	if c.Users.JWT.TTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must be positive, got %s", c.Users.JWT.TTL))
	}
	if c.Users.JWT.SecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY must not be empty"))
	}
	return errors.Join(errs...)
}

// UsesDefaultSecret reports whether JWT_SECRET_KEY was left at its default.
func (c *Config) UsesDefaultSecret() bool {
	return c.Users.JWT.SecretKey == defaultJWTSecret
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
