package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])

	assert.NotNil(t, serveCmd.Flags().Lookup("port"))
	assert.NotNil(t, migrateCmd.Flags().Lookup("seed"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	configPath = ""

	_, err := loadConfig(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadConfig_PortOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/careers")
	t.Setenv("PORT", "4000")
	configPath = ""

	cfg, err := loadConfig(0)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)

	cfg, err = loadConfig(5000)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
}

func TestLoadConfig_File(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "careers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"database_url":"postgres://db/careers","port":8088}`), 0o644))

	configPath = path
	defer func() { configPath = "" }()

	cfg, err := loadConfig(0)
	require.NoError(t, err)
	assert.Equal(t, 8088, cfg.Port)
	assert.Equal(t, "postgres://db/careers", cfg.DatabaseURL)
}

func TestRunServe_InvalidConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	configPath = ""

	err := runServe(serveCmd, nil)
	require.Error(t, err)
}
