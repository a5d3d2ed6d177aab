package config

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Owner.Address = "0x00000000000000000000000000000000000000a1"
	return cfg
}

func TestValidate_AcceptsDefaultsWithOwner(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsMissingOwner(t *testing.T) {
	cfg := Defaults()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner: address must be set")
}

func TestValidate_RejectsMalformedOwner(t *testing.T) {
	cfg := Defaults()
	cfg.Owner.Address = "not-an-address"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid hex address")
}

func TestValidate_TailModeNeedsNoOwner(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "tail"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.Redis.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "redis: addr must not be empty")
	assert.Contains(t, err.Error(), "owner: address must be set")
}

func TestValidate_TelegramFieldsComeTogether(t *testing.T) {
	cfg := validConfig()
	cfg.Notify.TelegramToken = "token"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram_token and telegram_chat_id")

	cfg.Notify.TelegramChatID = "12345"
	assert.NoError(t, cfg.Validate())
}

func TestOwnerAddress(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t,
		common.HexToAddress("0x00000000000000000000000000000000000000a1"),
		cfg.OwnerAddress(),
	)
}

func TestRedactedConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Postgres.Password = "hunter2"
	cfg.Redis.Password = "hunter2"
	cfg.S3.SecretKey = "hunter2"
	cfg.Server.APIKey = "hunter2"
	cfg.Notify.TelegramToken = "hunter2"
	cfg.Notify.TelegramChatID = "12345"

	red := RedactedConfig(&cfg)

	assert.Equal(t, "***", red.Postgres.Password)
	assert.Equal(t, "***", red.Redis.Password)
	assert.Equal(t, "***", red.S3.SecretKey)
	assert.Equal(t, "***", red.Server.APIKey)
	assert.Equal(t, "***", red.Notify.TelegramToken)

	// Non-secret fields pass through, and the original is untouched.
	assert.Equal(t, cfg.Owner.Address, red.Owner.Address)
	assert.Equal(t, "12345", red.Notify.TelegramChatID)
	assert.Equal(t, "hunter2", cfg.Postgres.Password)
}
