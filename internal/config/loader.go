package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/example/mentorship-scheduler/internal/persistence/sqlite/migration"
)

// Attendance storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config captures configuration values for the scheduler service.
type Config struct {
	HTTPPort          int
	SQLitePath        string
	SQLiteBusyTimeout time.Duration
	AttendanceBackend string
	Redis             RedisConfig
	// SweepInterval is how often attendance is generated for elapsed
	// sessions. Zero disables the background sweep.
	SweepInterval time.Duration
	LogLevel      slog.Level
}

// RedisConfig holds connection settings for the Redis attendance store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SQLiteConfig returns the connection settings for the configured database.
func (c Config) SQLiteConfig() migration.SQLiteConfig {
	cfg := migration.DefaultSQLiteConfig(c.SQLitePath)
	cfg.BusyTimeout = c.SQLiteBusyTimeout
	return cfg
}

type fileConfig struct {
	HTTPPort *int `yaml:"http_port"`
	SQLite   struct {
		Path        string `yaml:"path"`
		BusyTimeout string `yaml:"busy_timeout"`
	} `yaml:"sqlite"`
	Attendance struct {
		Backend       string `yaml:"backend"`
		SweepInterval string `yaml:"sweep_interval"`
	} `yaml:"attendance"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       *int   `yaml:"db"`
	} `yaml:"redis"`
	LogLevel string `yaml:"log_level"`
}

func defaults() Config {
	return Config{
		HTTPPort:          8080,
		SQLitePath:        "data/scheduler.db",
		SQLiteBusyTimeout: 30 * time.Second,
		AttendanceBackend: BackendSQLite,
		Redis:             RedisConfig{Addr: "localhost:6379"},
		SweepInterval:     time.Hour,
		LogLevel:          slog.LevelInfo,
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// SCHEDULER_CONFIG_FILE, an optional .env file named by SCHEDULER_ENV_FILE
// (default ".env") and the process environment, in increasing precedence.
// Invalid values are collected and reported together.
func Load() (Config, error) {
	envFile := strings.TrimSpace(os.Getenv("SCHEDULER_ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}

	cfg := defaults()
	invalid := make([]string, 0, 2)

	if path := strings.TrimSpace(os.Getenv("SCHEDULER_CONFIG_FILE")); path != "" {
		fileInvalid, err := applyFile(&cfg, path)
		if err != nil {
			return Config{}, err
		}
		invalid = append(invalid, fileInvalid...)
	}

	invalid = append(invalid, applyEnv(&cfg)...)

	switch cfg.AttendanceBackend {
	case BackendSQLite:
	case BackendRedis:
		if strings.TrimSpace(cfg.Redis.Addr) == "" {
			return Config{}, fmt.Errorf("required configuration is missing: SCHEDULER_REDIS_ADDR")
		}
	default:
		invalid = append(invalid, "SCHEDULER_ATTENDANCE_BACKEND")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	var invalid []string
	if fc.HTTPPort != nil {
		if *fc.HTTPPort <= 0 {
			invalid = append(invalid, "http_port")
		} else {
			cfg.HTTPPort = *fc.HTTPPort
		}
	}
	if fc.SQLite.Path != "" {
		cfg.SQLitePath = fc.SQLite.Path
	}
	if fc.SQLite.BusyTimeout != "" {
		if !setDuration(&cfg.SQLiteBusyTimeout, fc.SQLite.BusyTimeout, false) {
			invalid = append(invalid, "sqlite.busy_timeout")
		}
	}
	if fc.Attendance.Backend != "" {
		cfg.AttendanceBackend = strings.ToLower(fc.Attendance.Backend)
	}
	if fc.Attendance.SweepInterval != "" {
		if !setDuration(&cfg.SweepInterval, fc.Attendance.SweepInterval, true) {
			invalid = append(invalid, "attendance.sweep_interval")
		}
	}
	if fc.Redis.Addr != "" {
		cfg.Redis.Addr = fc.Redis.Addr
	}
	if fc.Redis.Password != "" {
		cfg.Redis.Password = fc.Redis.Password
	}
	if fc.Redis.DB != nil {
		if *fc.Redis.DB < 0 {
			invalid = append(invalid, "redis.db")
		} else {
			cfg.Redis.DB = *fc.Redis.DB
		}
	}
	if fc.LogLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(fc.LogLevel)); err != nil {
			invalid = append(invalid, "log_level")
		}
	}
	return invalid, nil
}

func applyEnv(cfg *Config) []string {
	var invalid []string

	if value := env("SCHEDULER_HTTP_PORT"); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 {
			invalid = append(invalid, "SCHEDULER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if value := env("SCHEDULER_SQLITE_PATH"); value != "" {
		cfg.SQLitePath = value
	}

	if value := env("SCHEDULER_SQLITE_BUSY_TIMEOUT"); value != "" {
		if !setDuration(&cfg.SQLiteBusyTimeout, value, false) {
			invalid = append(invalid, "SCHEDULER_SQLITE_BUSY_TIMEOUT")
		}
	}

	if value := env("SCHEDULER_ATTENDANCE_BACKEND"); value != "" {
		cfg.AttendanceBackend = strings.ToLower(value)
	}

	if value := env("SCHEDULER_REDIS_ADDR"); value != "" {
		cfg.Redis.Addr = value
	}
	if value := env("SCHEDULER_REDIS_PASSWORD"); value != "" {
		cfg.Redis.Password = value
	}
	if value := env("SCHEDULER_REDIS_DB"); value != "" {
		db, err := strconv.Atoi(value)
		if err != nil || db < 0 {
			invalid = append(invalid, "SCHEDULER_REDIS_DB")
		} else {
			cfg.Redis.DB = db
		}
	}

	if value := env("SCHEDULER_SWEEP_INTERVAL"); value != "" {
		if !setDuration(&cfg.SweepInterval, value, true) {
			invalid = append(invalid, "SCHEDULER_SWEEP_INTERVAL")
		}
	}

	if value := env("SCHEDULER_LOG_LEVEL"); value != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(value)); err != nil {
			invalid = append(invalid, "SCHEDULER_LOG_LEVEL")
		}
	}

	return invalid
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setDuration(dst *time.Duration, value string, allowZero bool) bool {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return false
	}
	*dst = d
	return true
}
