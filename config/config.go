package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// Telegram Bot
	Telegram TelegramConfig

	// Document storage
	Storage StorageConfig

	// Broadcast
	Broadcast BroadcastConfig

	// Observability
	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration
}

// TelegramConfig holds Telegram Bot settings.
type TelegramConfig struct {
	// Bot token from @BotFather
	Token string

	// OwnerID is the super-admin account. It has every capability and
	// receives private failure reports.
	OwnerID int64

	// Long polling settings
	PollingTimeout time.Duration

	// Bot behavior
	ParseMode string // "HTML" or "MarkdownV2"

	// Upload limits for catalog file attachments
	MaxUploadSize int64
}

// StorageConfig holds the JSON document store settings.
type StorageConfig struct {
	// DataDir is where every persisted document lives. May sit on a
	// shared filesystem; cross-process safety comes from marker locks.
	DataDir string

	// Advisory lock acquisition ceiling before LockTimeout is reported.
	LockTimeout time.Duration

	// Poll interval while waiting for a contended lock.
	LockPoll time.Duration

	// A marker older than this is treated as left behind by a crashed
	// process and force-broken. Must stay far above any single save.
	LockStaleAfter time.Duration
}

// BroadcastConfig holds fan-out settings.
type BroadcastConfig struct {
	// Delay between consecutive sends, keeps the bot under flood limits.
	PacingDelay time.Duration
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// Metrics + health endpoints
	MetricsEnabled bool
	MetricsPort    int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.App = loadAppConfig()

	var err error
	cfg.Telegram, err = loadTelegramConfig()
	if err != nil {
		return nil, fmt.Errorf("telegram config: %w", err)
	}

	cfg.Storage = loadStorageConfig()
	cfg.Broadcast = loadBroadcastConfig()
	cfg.Observability = loadObservabilityConfig()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func loadAppConfig() AppConfig {
	env := Environment(getEnv("APP_ENV", "development"))

	return AppConfig{
		Name:            getEnv("APP_NAME", "campus-content-bot"),
		Environment:     env,
		Debug:           env == EnvDevelopment || getEnvBool("APP_DEBUG", false),
		Version:         getEnv("APP_VERSION", "0.1.0"),
		ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadTelegramConfig() (TelegramConfig, error) {
	token := getEnv("TELEGRAM_BOT_TOKEN", "")

	return TelegramConfig{
		Token:          token,
		OwnerID:        getEnvInt64("TELEGRAM_OWNER_ID", 0),
		PollingTimeout: getEnvDuration("TELEGRAM_POLLING_TIMEOUT", 60*time.Second),
		ParseMode:      getEnv("TELEGRAM_PARSE_MODE", "HTML"),
		MaxUploadSize:  getEnvInt64("TELEGRAM_MAX_UPLOAD_SIZE", 3*1024*1024*1024),
	}, nil
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		DataDir:        getEnv("STORAGE_DATA_DIR", "data"),
		LockTimeout:    getEnvDuration("STORAGE_LOCK_TIMEOUT", 10*time.Second),
		LockPoll:       getEnvDuration("STORAGE_LOCK_POLL", 50*time.Millisecond),
		LockStaleAfter: getEnvDuration("STORAGE_LOCK_STALE_AFTER", 30*time.Second),
	}
}

func loadBroadcastConfig() BroadcastConfig {
	return BroadcastConfig{
		PacingDelay: getEnvDuration("BROADCAST_PACING_DELAY", 50*time.Millisecond),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		MetricsPort:    getEnvInt("METRICS_PORT", 9090),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Telegram.Token == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}

	if c.Telegram.OwnerID == 0 {
		errs = append(errs, "TELEGRAM_OWNER_ID is required")
	}

	if c.Storage.DataDir == "" {
		errs = append(errs, "STORAGE_DATA_DIR must not be empty")
	}

	if c.Storage.LockStaleAfter <= c.Storage.LockTimeout {
		errs = append(errs, "STORAGE_LOCK_STALE_AFTER must exceed STORAGE_LOCK_TIMEOUT")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
