package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"HTTP_PORT", "SHUTDOWN_TIMEOUT", "DOCSTORE_PATH", "DOCSTORE_DEBUG",
	"SEARCH_REDIS_ADDR", "SEARCH_REDIS_PASSWORD", "SEARCH_REDIS_DB", "SEARCH_INDEX",
	"REINDEX_INTERVAL", "REINDEX_ON_START", "JWT_SECRET_KEY", "JWT_ISSUER", "JWT_TTL", "BCRYPT_COST",
	"ADMIN_USERNAMES",
}

// clearEnv unsets every config key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()

	assert.Equal(t, 3000, cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "tasks.db", cfg.Docstore.Path)
	assert.Equal(t, "localhost:6379", cfg.Search.RedisAddr)
	assert.Equal(t, "tasks", cfg.Search.Index)
	assert.Zero(t, cfg.Tasks.ReindexInterval)
	assert.False(t, cfg.Tasks.ReindexOnStart)
	assert.Equal(t, time.Hour, cfg.Users.JWT.TTL)
	assert.Empty(t, cfg.AdminUsernames)
	assert.True(t, cfg.UsesDefaultSecret())
	assert.NoError(t, cfg.Validate())
}

func TestOverridesAndInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("REINDEX_INTERVAL", "5m")
	t.Setenv("REINDEX_ON_START", "true")
	t.Setenv("SEARCH_REDIS_DB", "not-a-number")
	t.Setenv("JWT_TTL", "soon")
	t.Setenv("ADMIN_USERNAMES", " alice, ,bob ")

	cfg := FromEnv()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 5*time.Minute, cfg.Tasks.ReindexInterval)
	assert.True(t, cfg.Tasks.ReindexOnStart)
	assert.Equal(t, 0, cfg.Search.RedisDB)
	assert.Equal(t, time.Hour, cfg.Users.JWT.TTL)
	assert.Equal(t, []string{"alice", "bob"}, cfg.AdminUsernames)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()
	cfg.HTTPPort = 0
	cfg.Tasks.ReindexInterval = -time.Second
	cfg.Docstore.Path = " "

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_PORT")
	assert.Contains(t, err.Error(), "REINDEX_INTERVAL")
	assert.Contains(t, err.Error(), "DOCSTORE_PATH")
}

func TestLoadReadsEnvFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	shared := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(local, []byte("HTTP_PORT=4000\n"), 0o600))
	require.NoError(t, os.WriteFile(shared, []byte("HTTP_PORT=5000\nSEARCH_INDEX=from-dotenv\n"), 0o600))

	old := EnvFiles
	EnvFiles = []string{local, shared, filepath.Join(dir, "missing.env")}
	t.Cleanup(func() {
		EnvFiles = old
		for _, k := range allKeys {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.HTTPPort)
	assert.Equal(t, "from-dotenv", cfg.Search.Index)
}
