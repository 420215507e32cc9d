package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configKeys = []string{
	"SCHEDULER_HTTP_PORT",
	"SCHEDULER_SQLITE_PATH",
	"SCHEDULER_SQLITE_BUSY_TIMEOUT",
	"SCHEDULER_ATTENDANCE_BACKEND",
	"SCHEDULER_REDIS_ADDR",
	"SCHEDULER_REDIS_PASSWORD",
	"SCHEDULER_REDIS_DB",
	"SCHEDULER_SWEEP_INTERVAL",
	"SCHEDULER_LOG_LEVEL",
	"SCHEDULER_CONFIG_FILE",
}

// clearEnv blanks every configuration variable and points the env file at a
// path that does not exist.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
	t.Setenv("SCHEDULER_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLitePath != "data/scheduler.db" {
			t.Fatalf("unexpected default path: %q", cfg.SQLitePath)
		}
		if cfg.AttendanceBackend != BackendSQLite {
			t.Fatalf("expected sqlite backend, got %q", cfg.AttendanceBackend)
		}
		if cfg.SweepInterval != time.Hour {
			t.Fatalf("expected hourly sweep, got %v", cfg.SweepInterval)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("expected info level, got %v", cfg.LogLevel)
		}
	})

	t.Run("reads overrides from the environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SCHEDULER_HTTP_PORT", "9090")
		t.Setenv("SCHEDULER_SQLITE_PATH", "/var/lib/scheduler/db.sqlite")
		t.Setenv("SCHEDULER_SQLITE_BUSY_TIMEOUT", "10s")
		t.Setenv("SCHEDULER_ATTENDANCE_BACKEND", "REDIS")
		t.Setenv("SCHEDULER_REDIS_ADDR", "cache:6379")
		t.Setenv("SCHEDULER_REDIS_DB", "2")
		t.Setenv("SCHEDULER_SWEEP_INTERVAL", "0")
		t.Setenv("SCHEDULER_LOG_LEVEL", "debug")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.AttendanceBackend != BackendRedis || cfg.Redis.Addr != "cache:6379" || cfg.Redis.DB != 2 {
			t.Fatalf("unexpected redis settings: %q %+v", cfg.AttendanceBackend, cfg.Redis)
		}
		if cfg.SweepInterval != 0 {
			t.Fatalf("expected sweep disabled, got %v", cfg.SweepInterval)
		}
		if cfg.LogLevel != slog.LevelDebug {
			t.Fatalf("expected debug level, got %v", cfg.LogLevel)
		}

		sqliteCfg := cfg.SQLiteConfig()
		if sqliteCfg.DSN != "/var/lib/scheduler/db.sqlite" || sqliteCfg.BusyTimeout != 10*time.Second {
			t.Fatalf("unexpected sqlite config: %+v", sqliteCfg)
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SCHEDULER_HTTP_PORT", "not-a-port")
		t.Setenv("SCHEDULER_SWEEP_INTERVAL", "-5m")
		t.Setenv("SCHEDULER_ATTENDANCE_BACKEND", "mongodb")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "invalid configuration values: SCHEDULER_HTTP_PORT, SCHEDULER_SWEEP_INTERVAL, SCHEDULER_ATTENDANCE_BACKEND"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("busy timeout must be positive", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SCHEDULER_SQLITE_BUSY_TIMEOUT", "0s")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for zero busy timeout")
		}
	})
}

func TestLoader_ConfigFile(t *testing.T) {

	t.Run("yaml values apply and the environment wins", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, "scheduler.yaml", `
http_port: 7070
sqlite:
  path: /srv/scheduler.db
  busy_timeout: 45s
attendance:
  backend: redis
  sweep_interval: 15m
redis:
  addr: redis.internal:6379
  db: 4
log_level: warn
`)
		t.Setenv("SCHEDULER_CONFIG_FILE", path)
		t.Setenv("SCHEDULER_HTTP_PORT", "9191")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 9191 {
			t.Fatalf("expected environment port 9191, got %d", cfg.HTTPPort)
		}
		if cfg.SQLitePath != "/srv/scheduler.db" || cfg.SQLiteBusyTimeout != 45*time.Second {
			t.Fatalf("unexpected sqlite settings: %q %v", cfg.SQLitePath, cfg.SQLiteBusyTimeout)
		}
		if cfg.AttendanceBackend != BackendRedis || cfg.Redis.Addr != "redis.internal:6379" || cfg.Redis.DB != 4 {
			t.Fatalf("unexpected redis settings: %+v", cfg.Redis)
		}
		if cfg.SweepInterval != 15*time.Minute {
			t.Fatalf("expected 15m sweep, got %v", cfg.SweepInterval)
		}
		if cfg.LogLevel != slog.LevelWarn {
			t.Fatalf("expected warn level, got %v", cfg.LogLevel)
		}
	})

	t.Run("invalid yaml values are reported by key", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, "scheduler.yaml", "http_port: -1\nlog_level: loud\n")
		t.Setenv("SCHEDULER_CONFIG_FILE", path)

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error")
		}
		if err.Error() != "invalid configuration values: http_port, log_level" {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("missing config file is an error", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SCHEDULER_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for missing config file")
		}
	})

	t.Run("env file fills unset variables", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, "test.env", "SCHEDULER_REDIS_DB=7\nSCHEDULER_LOG_LEVEL=error\n")
		t.Setenv("SCHEDULER_ENV_FILE", path)
		// Set variables are never overridden by the env file, so remove the
		// blank entry; t.Setenv restores the original value afterwards.
		if err := os.Unsetenv("SCHEDULER_REDIS_DB"); err != nil {
			t.Fatalf("failed to unset: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Redis.DB != 7 {
			t.Fatalf("expected redis db 7 from env file, got %d", cfg.Redis.DB)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("expected blank SCHEDULER_LOG_LEVEL to keep the default, got %v", cfg.LogLevel)
		}
	})
}
