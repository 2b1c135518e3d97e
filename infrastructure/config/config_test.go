package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	for key := range defaults {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppAddr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.AppAddr)
	}
	if cfg.RecordStoreURL != "http://localhost:8001" {
		t.Fatalf("unexpected record store url %q", cfg.RecordStoreURL)
	}
	if cfg.RecordStoreTimeout != 30*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.RecordStoreTimeout)
	}
	if cfg.RequireAckBeforeComplete {
		t.Fatalf("expected completion without acknowledgment to be allowed by default")
	}
	if cfg.DefaultLanguage != "en" || cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("unexpected language/log level: %q %v", cfg.DefaultLanguage, cfg.LogLevel)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("RECORD_STORE_URL", "http://records.internal:9000/")
	t.Setenv("REQUIRE_ACK_BEFORE_COMPLETE", "true")
	t.Setenv("RECORD_CACHE_TTL", "5m")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RecordStoreURL != "http://records.internal:9000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.RecordStoreURL)
	}
	if !cfg.RequireAckBeforeComplete {
		t.Fatalf("expected REQUIRE_ACK_BEFORE_COMPLETE override")
	}
	if cfg.RecordCacheTTL != 5*time.Minute {
		t.Fatalf("unexpected cache ttl %s", cfg.RecordCacheTTL)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("unexpected log level %v", cfg.LogLevel)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleetcheck.env")
	if err := os.WriteFile(path, []byte("SQLITE_PATH=/var/lib/fleetcheck/app.db\nDEFAULT_LANGUAGE=RO\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SQLITE_PATH", "")
	os.Unsetenv("SQLITE_PATH")
	t.Setenv("DEFAULT_LANGUAGE", "")
	os.Unsetenv("DEFAULT_LANGUAGE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SQLitePath != "/var/lib/fleetcheck/app.db" {
		t.Fatalf("expected sqlite path from file, got %q", cfg.SQLitePath)
	}
	if cfg.DefaultLanguage != "ro" {
		t.Fatalf("expected language from file, got %q", cfg.DefaultLanguage)
	}
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LOG_LEVEL", "loud")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
}
