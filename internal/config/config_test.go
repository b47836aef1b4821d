package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "DATABASE_URL", "UPLOAD_DIR", "MAX_UPLOAD_BYTES", "STATIC_DIR", "REDIS_URL", "LOG_LEVEL", "LOG_FORMAT",
	"METRICS_ENABLED", "SEED_JOBS", "SWEEP_SCHEDULE", "SWEEP_GRACE", "SHUTDOWN_TIMEOUT", "SSE_BUFFER",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT", "APPLY_RATE_LIMIT",
}

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.True(t, cfg.MetricsEnabled)
	assert.True(t, cfg.SeedJobs)
	assert.Equal(t, time.Hour, cfg.SweepGrace)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, 20, cfg.ApplyRateLimit)
}

func TestLoad_ValidJSON(t *testing.T) {
	clearEnv(t)
	content := `{
		"port": 8081,
		"database_url": "postgres://localhost/careers",
		"upload_dir": "/var/lib/careers/uploads",
		"metrics_enabled": false,
		"sweep_schedule": "@hourly",
		"sweep_grace": "2h",
		"shutdown_timeout": "5s"
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := Load(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "postgres://localhost/careers", cfg.DatabaseURL)
	assert.Equal(t, "/var/lib/careers/uploads", cfg.UploadDir)
	assert.False(t, cfg.MetricsEnabled)
	assert.True(t, cfg.SeedJobs, "keys absent from the file keep their defaults")
	assert.Equal(t, 2*time.Hour, cfg.SweepGrace)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"port": 8081, "log_level": "debug"}`), 0644))

	t.Setenv("PORT", "9090")
	t.Setenv("SEED_JOBS", "false")
	t.Setenv("SWEEP_GRACE", "15m")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("RATE_LIMIT_ENABLED", "true")

	cfg, err := Load(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.SeedJobs)
	assert.Equal(t, 15*time.Minute, cfg.SweepGrace)
	assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
	assert.True(t, cfg.RateLimitEnabled)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"PORT", "abc", "PORT must be an integer"},
		{"METRICS_ENABLED", "maybe", "METRICS_ENABLED must be a boolean"},
		{"SHUTDOWN_TIMEOUT", "soon", "SHUTDOWN_TIMEOUT must be a duration"},
		{"MAX_UPLOAD_BYTES", "lots", "MAX_UPLOAD_BYTES must be an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load("")
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	clearEnv(t)
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := Load(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoad_FileNotFound(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Default()
		c.DatabaseURL = "postgres://localhost/careers"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }, "database_url"},
		{"port out of range", func(c *Config) { c.Port = 70000 }, "port"},
		{"empty upload dir", func(c *Config) { c.UploadDir = "" }, "upload_dir"},
		{"zero upload limit", func(c *Config) { c.MaxUploadBytes = 0 }, "max_upload_bytes"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"bad sse buffer", func(c *Config) { c.SSEBuffer = 0 }, "sse_buffer"},
		{"bad sweep schedule", func(c *Config) { c.SweepSchedule = "every tuesday" }, "sweep_schedule"},
		{"valid sweep schedule", func(c *Config) { c.SweepSchedule = "*/10 * * * *" }, ""},
		{"zero apply limit", func(c *Config) { c.RateLimitEnabled = true; c.ApplyRateLimit = 0 }, "rate limits"},
		{"limits ignored when disabled", func(c *Config) { c.RateLimitEnabled = false; c.RateLimit = 0 }, ""},
		{"zero sweep grace", func(c *Config) { c.SweepSchedule = "@daily"; c.SweepGrace = 0 }, "sweep_grace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
