package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks optional variables so host settings cannot leak into defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_ENV", "PORT", "ALLOWED_ORIGINS", "JWT_TOKEN_DURATION", "DB_CONNECT_ATTEMPTS",
		"DB_CONNECT_DELAY", "SQLITE_PATH", "DB_POOL_SIZE", "AUTH_RATE_LIMIT", "AUTH_RATE_BURST", "DB_PORT", "DB_HOST"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_SQLiteDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, defaultAllowedOrigins, cfg.Server.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenDuration)
	assert.True(t, cfg.Auth.SecureCookies)
	assert.Equal(t, 5, cfg.Database.ConnectAttempts)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectDelay)
	assert.Equal(t, "emojicringe.db", cfg.Database.SQLitePath)
}

func TestLoadConfig_MissingSecretHasNoFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfig_PostgresFromParts(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "emoji")
	t.Setenv("DB_PASSWORD", "p@ss")
	t.Setenv("DB_NAME", "cringe")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("APP_ENV", "development")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://emoji:p%40ss@db:6543/cringe?sslmode=disable", cfg.Database.URL)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.Auth.SecureCookies)
}

func TestLoadConfig_CollectsAllErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_CONNECT_DELAY", "soon")
	t.Setenv("APP_ENV", "staging")

	_, err := LoadConfig()
	require.Error(t, err)
	for _, want := range []string{"DB_USER", "DB_PASSWORD", "DB_NAME", "JWT_SECRET", "DB_CONNECT_DELAY", "APP_ENV"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadConfig_OriginsList(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}
