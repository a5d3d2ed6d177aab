package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	path := writeConfigFile(t, `
mode = "scan"

[owner]
address = "0x00000000000000000000000000000000000000a1"

[postgres]
database = "ledgertest"

[server]
port = 9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "scan", cfg.Mode)
	assert.Equal(t, "ledgertest", cfg.Postgres.Database)
	assert.Equal(t, 9090, cfg.Server.Port)

	// Untouched fields keep their defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverridesWinOverFile(t *testing.T) {
	path := writeConfigFile(t, `
[owner]
address = "0x00000000000000000000000000000000000000a1"

[redis]
addr = "file-redis:6379"
`)

	t.Setenv("FEDHAMEV_REDIS_ADDR", "env-redis:6379")
	t.Setenv("FEDHAMEV_POSTGRES_PASSWORD", "fromenv")
	t.Setenv("FEDHAMEV_MODE", "tail")
	t.Setenv("FEDHAMEV_NOTIFY_EVENTS", "transaction_added, opportunity_identified")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "fromenv", cfg.Postgres.Password)
	assert.Equal(t, "tail", cfg.Mode)
	assert.Equal(t, []string{"transaction_added", "opportunity_identified"}, cfg.Notify.Events)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
