package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "default", cfg.User)
	assert.Equal(t, "default", cfg.Database)
	assert.Equal(t, 2, cfg.Indent)
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DIRDB_DATA_DIR", "/tmp/dbroot")
	t.Setenv("DIRDB_LOG_LEVEL", "debug")
	t.Setenv("DIRDB_USER", "alice")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/dbroot", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "alice", cfg.User)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	yaml := "data_dir: /srv/dirdb\nlog_level: warn\nindent: 4\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dirdb.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/dirdb", cfg.DataDir)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Indent)
	assert.Equal(t, "default", cfg.User, "unset keys keep their defaults")
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DIRDB_LOG_LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadExplicitConfigPath(t *testing.T) {
	dir := t.TempDir()
	chdir(t, t.TempDir())
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: orders\n"), 0o644))
	t.Setenv("DIRDB_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "orders", cfg.Database)
}
