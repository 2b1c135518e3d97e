package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime settings for the web server and the operator CLI.
type Config struct {
	AppAddr                  string
	SQLitePath               string
	RecordStoreURL           string
	RecordStoreTimeout       time.Duration
	RecordCacheTTL           time.Duration
	RedisAddress             string
	RequireAckBeforeComplete bool
	DefaultLanguage          string
	LogLevel                 slog.Level
	AdminPassword            string
}

var defaults = map[string]any{
	"APP_ADDR":                    ":8080",
	"SQLITE_PATH":                 "fleetcheck.db",
	"RECORD_STORE_URL":            "http://localhost:8001",
	"RECORD_STORE_TIMEOUT":        "30s",
	"RECORD_CACHE_TTL":            "60s",
	"REDIS_ADDRESS":               "",
	"REQUIRE_ACK_BEFORE_COMPLETE": false,
	"DEFAULT_LANGUAGE":            "en",
	"LOG_LEVEL":                   "info",
	"ADMIN_PASSWORD":              "",
}

var logLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// Load reads settings from the environment. When CONFIG_FILE names an
// env-format file its values are used for keys not set in the environment.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if file := strings.TrimSpace(os.Getenv("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", filepath.Base(file), err)
		}
	}

	level, ok := logLevels[strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL")))]
	if !ok {
		return nil, fmt.Errorf("unknown LOG_LEVEL %q", v.GetString("LOG_LEVEL"))
	}

	cfg := &Config{
		AppAddr:                  strings.TrimSpace(v.GetString("APP_ADDR")),
		SQLitePath:               strings.TrimSpace(v.GetString("SQLITE_PATH")),
		RecordStoreURL:           strings.TrimRight(strings.TrimSpace(v.GetString("RECORD_STORE_URL")), "/"),
		RecordStoreTimeout:       v.GetDuration("RECORD_STORE_TIMEOUT"),
		RecordCacheTTL:           v.GetDuration("RECORD_CACHE_TTL"),
		RedisAddress:             strings.TrimSpace(v.GetString("REDIS_ADDRESS")),
		RequireAckBeforeComplete: v.GetBool("REQUIRE_ACK_BEFORE_COMPLETE"),
		DefaultLanguage:          strings.ToLower(strings.TrimSpace(v.GetString("DEFAULT_LANGUAGE"))),
		LogLevel:                 level,
		AdminPassword:            v.GetString("ADMIN_PASSWORD"),
	}
	if err := cfg.sanityCheck(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) sanityCheck() error {
	if c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required")
	}
	if c.RecordStoreURL == "" {
		return fmt.Errorf("RECORD_STORE_URL is required")
	}
	if c.RecordStoreTimeout <= 0 {
		return fmt.Errorf("RECORD_STORE_TIMEOUT must be positive")
	}
	if c.RecordCacheTTL < 0 {
		return fmt.Errorf("RECORD_CACHE_TTL must not be negative")
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = "en"
	}
	return nil
}
