package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.ServerAddress)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL())
	assert.Equal(t, filepath.Join(dir, "notes.db"), cfg.DataPath)
	assert.Equal(t, filepath.Join(dir, "sync.lock"), cfg.LockPath)
	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
	assert.Equal(t, "newer", cfg.ConflictStrategy)
	assert.Equal(t, 50, cfg.BatchSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("SERVER_ADDRESS", "notes.example.com")
	t.Setenv("ENABLE_TLS", "true")
	t.Setenv("CONFLICT_STRATEGY", "manual")
	t.Setenv("SYNC_BATCH_SIZE", "10")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "https://notes.example.com", cfg.BaseURL())
	assert.Equal(t, "manual", cfg.ConflictStrategy)
	assert.Equal(t, 10, cfg.BatchSize)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_address: files.local:9000\nconflict_strategy: server\n"), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "files.local:9000", cfg.ServerAddress)
	assert.Equal(t, "server", cfg.ConflictStrategy)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown strategy", env: map[string]string{"CONFLICT_STRATEGY": "random"}},
		{name: "zero batch", env: map[string]string{"SYNC_BATCH_SIZE": "0"}},
		{name: "huge batch", env: map[string]string{"SYNC_BATCH_SIZE": "5000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_DIR", t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(viper.New(), "")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())

	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
