// Package config loads the application's configuration from environment variables.
// Every problem found while loading is collected and reported together, so a
// misconfigured deployment fails once with the full list instead of one variable at a time.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment names understood by APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage drivers understood by DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// defaultAllowedOrigins are the local frontend dev servers.
var defaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:3000",
}

// DatabaseConfig holds everything needed to reach the backing store.
type DatabaseConfig struct {
	Driver   string
	URL      string // PostgreSQL DSN, composed from the DB_* parts when DATABASE_URL is unset
	PoolSize int
	// SQLitePath is only used when Driver is "sqlite".
	SQLitePath string

	// ConnectAttempts and ConnectDelay bound the start-up connection retry loop.
	ConnectAttempts int
	ConnectDelay    time.Duration
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret     string        // Secret key for signing JWTs; there is no fallback value.
	TokenDuration time.Duration // Lifetime of issued tokens
	// SecureCookies sets the Secure attribute on the auth cookie.
	SecureCookies bool
	// RateLimit and RateBurst throttle the /api/auth routes per client IP.
	RateLimit float64
	RateBurst int
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// LogConfig selects the logrus level and output format.
type LogConfig struct {
	Level  string
	Format string // "text" or "json"
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	Env      string
	Database *DatabaseConfig
	Auth     *AuthConfig
	Server   *ServerConfig
	Log      *LogConfig
}

// IsDevelopment reports whether verbose error bodies should be sent to clients.
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// getRequiredEnv returns the variable or records it as missing.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

func getOptionalEnvFloat(key string, defaultValue float64, errors *[]string) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected number, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return value
}

// getOptionalEnvDuration parses values such as "24h" or "5s".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// getOptionalEnvList splits a comma separated variable, dropping blanks.
func getOptionalEnvList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// clampPoolSize keeps the pool between 5 and 100 connections.
func clampPoolSize(size int, errors *[]string) int {
	if size < 5 {
		*errors = append(*errors, fmt.Sprintf("DB_POOL_SIZE (%d) is less than minimum 5", size))
		return 5
	}
	if size > 100 {
		*errors = append(*errors, fmt.Sprintf("DB_POOL_SIZE (%d) is greater than maximum 100", size))
		return 100
	}
	return size
}

// LoadConfig reads and validates the environment and returns the AppConfig,
// or a single error listing every problem found.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	env := getOptionalEnv("APP_ENV", EnvProduction)
	if env != EnvDevelopment && env != EnvProduction {
		errors = append(errors, fmt.Sprintf("invalid APP_ENV %q: expected %q or %q", env, EnvDevelopment, EnvProduction))
	}

	// Database
	driver := getOptionalEnv("DB_DRIVER", DriverPostgres)
	dbCfg := &DatabaseConfig{
		Driver:          driver,
		PoolSize:        clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errors), &errors),
		SQLitePath:      getOptionalEnv("SQLITE_PATH", "emojicringe.db"),
		ConnectAttempts: getOptionalEnvInt("DB_CONNECT_ATTEMPTS", 5, &errors),
		ConnectDelay:    getOptionalEnvDuration("DB_CONNECT_DELAY", 5*time.Second, &errors),
	}
	if dbCfg.ConnectAttempts < 1 {
		errors = append(errors, "DB_CONNECT_ATTEMPTS must be at least 1")
	}
	switch driver {
	case DriverPostgres:
		if dsn, ok := os.LookupEnv("DATABASE_URL"); ok && dsn != "" {
			dbCfg.URL = dsn
		} else {
			user := getRequiredEnv("DB_USER", &errors)
			password := getRequiredEnv("DB_PASSWORD", &errors)
			name := getRequiredEnv("DB_NAME", &errors)
			host := getOptionalEnv("DB_HOST", "localhost")
			port := getOptionalEnvInt("DB_PORT", 5432, &errors)
			dbCfg.URL = BuildPostgresURL(user, password, host, port, name)
		}
	case DriverSQLite:
	default:
		errors = append(errors, fmt.Sprintf("unsupported DB_DRIVER %q: expected %q or %q", driver, DriverPostgres, DriverSQLite))
	}

	// Auth
	authCfg := &AuthConfig{
		JWTSecret:     getRequiredEnv("JWT_SECRET", &errors),
		TokenDuration: getOptionalEnvDuration("JWT_TOKEN_DURATION", 24*time.Hour, &errors),
		SecureCookies: env == EnvProduction,
		RateLimit:     getOptionalEnvFloat("AUTH_RATE_LIMIT", 5, &errors),
		RateBurst:     getOptionalEnvInt("AUTH_RATE_BURST", 10, &errors),
	}

	serverCfg := &ServerConfig{
		Port:           getOptionalEnv("PORT", "3000"),
		AllowedOrigins: getOptionalEnvList("ALLOWED_ORIGINS", defaultAllowedOrigins),
	}

	logCfg := &LogConfig{
		Level:  getOptionalEnv("LOG_LEVEL", "info"),
		Format: getOptionalEnv("LOG_FORMAT", "text"),
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		Env:      env,
		Database: dbCfg,
		Auth:     authCfg,
		Server:   serverCfg,
		Log:      logCfg,
	}, nil
}

// BuildPostgresURL composes a postgres:// DSN usable by both pgx and golang-migrate.
func BuildPostgresURL(user, password, host string, port int, dbName string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     "/" + dbName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
