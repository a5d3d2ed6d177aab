package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies FEDHAMEV_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known FEDHAMEV_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// --- Owner ---
	setStr(&cfg.Owner.Address, "FEDHAMEV_OWNER_ADDRESS")

	// --- Postgres ---
	setBool(&cfg.Postgres.Enabled, "FEDHAMEV_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "FEDHAMEV_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "FEDHAMEV_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "FEDHAMEV_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "FEDHAMEV_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "FEDHAMEV_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "FEDHAMEV_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "FEDHAMEV_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "FEDHAMEV_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "FEDHAMEV_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "FEDHAMEV_POSTGRES_RUN_MIGRATIONS")

	// --- Redis ---
	setStr(&cfg.Redis.Addr, "FEDHAMEV_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "FEDHAMEV_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "FEDHAMEV_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "FEDHAMEV_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "FEDHAMEV_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "FEDHAMEV_REDIS_TLS_ENABLED")

	// --- S3 ---
	setBool(&cfg.S3.Enabled, "FEDHAMEV_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "FEDHAMEV_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "FEDHAMEV_S3_REGION")
	setStr(&cfg.S3.Bucket, "FEDHAMEV_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "FEDHAMEV_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "FEDHAMEV_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "FEDHAMEV_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "FEDHAMEV_S3_FORCE_PATH_STYLE")

	// --- Server ---
	setInt(&cfg.Server.Port, "FEDHAMEV_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "FEDHAMEV_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "FEDHAMEV_SERVER_API_KEY")

	// --- Notify ---
	setStr(&cfg.Notify.TelegramToken, "FEDHAMEV_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "FEDHAMEV_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "FEDHAMEV_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "FEDHAMEV_NOTIFY_EVENTS")

	// --- Top-level ---
	setStr(&cfg.Mode, "FEDHAMEV_MODE")
	setStr(&cfg.LogLevel, "FEDHAMEV_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
