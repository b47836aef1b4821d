// Package config provides configuration loading and validation for the careers server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Defaults
const (
	DefaultPort            = 3000
	DefaultUploadDir       = "uploads"
	DefaultMaxUploadBytes  = 10 << 20
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultSweepGrace      = time.Hour
	DefaultShutdownTimeout = 30 * time.Second
	DefaultSSEBuffer       = 16
	DefaultRateLimit       = 1000 // requests per minute per client
	DefaultApplyRateLimit  = 20   // applications per hour per client
)

// Config holds server configuration. Values come from an optional JSON file
// and are then overridden by environment variables.
type Config struct {
	Port           int    `json:"port,omitempty"`
	DatabaseURL    string `json:"database_url,omitempty"` // PostgreSQL connection URL
	UploadDir      string `json:"upload_dir,omitempty"`   // Resume blob root
	MaxUploadBytes int64  `json:"max_upload_bytes,omitempty"`

	// StaticDir, when set, holds a built frontend served at /.
	StaticDir string `json:"static_dir,omitempty"`

	// RedisURL enables the cross-instance event relay when set.
	RedisURL string `json:"redis_url,omitempty"`

	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"` // json or text

	MetricsEnabled bool `json:"metrics_enabled"`
	SeedJobs       bool `json:"seed_jobs"`

	// SweepSchedule is a cron spec for the orphaned-resume sweep; empty disables it.
	SweepSchedule string        `json:"sweep_schedule,omitempty"`
	SweepGrace    time.Duration `json:"-"`
	SweepGraceStr string        `json:"sweep_grace,omitempty"`

	ShutdownTimeout    time.Duration `json:"-"`
	ShutdownTimeoutStr string        `json:"shutdown_timeout,omitempty"`

	// SSEBuffer is the per-subscriber event buffer of the notification hub.
	SSEBuffer int `json:"sse_buffer,omitempty"`

	RateLimitEnabled bool `json:"rate_limit_enabled"`
	RateLimit        int  `json:"rate_limit,omitempty"`
	ApplyRateLimit   int  `json:"apply_rate_limit,omitempty"`
}

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		Port:             DefaultPort,
		UploadDir:        DefaultUploadDir,
		MaxUploadBytes:   DefaultMaxUploadBytes,
		LogLevel:         DefaultLogLevel,
		LogFormat:        DefaultLogFormat,
		MetricsEnabled:   true,
		SeedJobs:         true,
		SweepGrace:       DefaultSweepGrace,
		ShutdownTimeout:  DefaultShutdownTimeout,
		SSEBuffer:        DefaultSSEBuffer,
		RateLimitEnabled: false,
		RateLimit:        DefaultRateLimit,
		ApplyRateLimit:   DefaultApplyRateLimit,
	}
}

// Load builds the configuration: defaults, then the JSON file at path (if
// path is non-empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if c.SweepGraceStr != "" {
		d, err := time.ParseDuration(c.SweepGraceStr)
		if err != nil {
			return fmt.Errorf("config error: invalid sweep_grace %q: %w", c.SweepGraceStr, err)
		}
		c.SweepGrace = d
	}
	if c.ShutdownTimeoutStr != "" {
		d, err := time.ParseDuration(c.ShutdownTimeoutStr)
		if err != nil {
			return fmt.Errorf("config error: invalid shutdown_timeout %q: %w", c.ShutdownTimeoutStr, err)
		}
		c.ShutdownTimeout = d
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error
	setString := func(key string, dst *string) {
		if v, ok := lookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := lookupEnv(key); ok && err == nil {
			n, perr := strconv.Atoi(strings.TrimSpace(v))
			if perr != nil {
				err = fmt.Errorf("config error: %s must be an integer: %w", key, perr)
				return
			}
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := lookupEnv(key); ok && err == nil {
			b, perr := strconv.ParseBool(strings.TrimSpace(v))
			if perr != nil {
				err = fmt.Errorf("config error: %s must be a boolean: %w", key, perr)
				return
			}
			*dst = b
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := lookupEnv(key); ok && err == nil {
			d, perr := time.ParseDuration(strings.TrimSpace(v))
			if perr != nil {
				err = fmt.Errorf("config error: %s must be a duration: %w", key, perr)
				return
			}
			*dst = d
		}
	}

	setInt("PORT", &c.Port)
	setString("DATABASE_URL", &c.DatabaseURL)
	setString("UPLOAD_DIR", &c.UploadDir)
	if v, ok := lookupEnv("MAX_UPLOAD_BYTES"); ok {
		n, perr := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if perr != nil {
			return fmt.Errorf("config error: MAX_UPLOAD_BYTES must be an integer: %w", perr)
		}
		c.MaxUploadBytes = n
	}
	setString("STATIC_DIR", &c.StaticDir)
	setString("REDIS_URL", &c.RedisURL)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("LOG_FORMAT", &c.LogFormat)
	setBool("METRICS_ENABLED", &c.MetricsEnabled)
	setBool("SEED_JOBS", &c.SeedJobs)
	setString("SWEEP_SCHEDULE", &c.SweepSchedule)
	setDuration("SWEEP_GRACE", &c.SweepGrace)
	setDuration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout)
	setInt("SSE_BUFFER", &c.SSEBuffer)
	setBool("RATE_LIMIT_ENABLED", &c.RateLimitEnabled)
	setInt("RATE_LIMIT", &c.RateLimit)
	setInt("APPLY_RATE_LIMIT", &c.ApplyRateLimit)

	return err
}

// lookupEnv treats an empty variable as unset.
func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' (DATABASE_URL) is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535")
	}
	if c.UploadDir == "" {
		return fmt.Errorf("config error: 'upload_dir' must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config error: 'max_upload_bytes' must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config error: invalid 'log_level' %q", c.LogLevel)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("config error: 'log_format' must be json or text")
	}
	if c.SSEBuffer <= 0 {
		return fmt.Errorf("config error: 'sse_buffer' must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("config error: 'shutdown_timeout' must be positive")
	}
	if c.RateLimitEnabled && (c.RateLimit <= 0 || c.ApplyRateLimit <= 0) {
		return fmt.Errorf("config error: rate limits must be positive when rate limiting is enabled")
	}
	if c.SweepSchedule != "" {
		if _, err := cron.ParseStandard(c.SweepSchedule); err != nil {
			return fmt.Errorf("config error: invalid 'sweep_schedule': %w", err)
		}
		if c.SweepGrace <= 0 {
			return fmt.Errorf("config error: 'sweep_grace' must be positive")
		}
	}
	return nil
}

// Addr returns the listen address for the configured port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
