package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "TYCOON_ADDR", "TYCOON_DATA_DIR", "TYCOON_CATALOG", "TYCOON_TICK_EVERY",
		"TYCOON_PER_CLICK", "TYCOON_LOG_LEVEL", "TYCOON_LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadServerDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadServer("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 60*time.Second, cfg.TickEvery)
	assert.Equal(t, 1.0, cfg.PerClick)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ".tycoon", filepath.Base(cfg.DataDir))
	assert.Empty(t, cfg.CatalogPath)
}

func TestLoadServerFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "tycoon.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr = ":9000"
data_dir = "/srv/tycoon"
tick_every = "30s"
per_click = 2.5
log_format = "text"
`), 0o600))

	cfg, err := LoadServer(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "/srv/tycoon", cfg.DataDir)
	assert.Equal(t, 30*time.Second, cfg.TickEvery)
	assert.Equal(t, 2.5, cfg.PerClick)
	assert.Equal(t, "text", cfg.LogFormat)

	t.Setenv("PORT", "7000")
	t.Setenv("TYCOON_TICK_EVERY", "5s")
	t.Setenv("TYCOON_PER_CLICK", "not-a-number")
	cfg, err = LoadServer(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.TickEvery)
	assert.Equal(t, 2.5, cfg.PerClick)
}

func TestLoadServerValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"negative tick", map[string]string{"TYCOON_TICK_EVERY": "-1s"}},
		{"negative click", map[string]string{"TYCOON_PER_CLICK": "-1"}},
		{"bad format", map[string]string{"TYCOON_LOG_FORMAT": "xml"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadServer("")
			require.Error(t, err)
		})
	}
}

func TestLoadServerBadFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadServer(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("addr = "), 0o600))
	_, err = LoadServer(path)
	require.Error(t, err)
}

func TestLoadCLIFromEnv(t *testing.T) {
	t.Setenv("TYC_API_BASE_URL", "http://game.local:9000/")
	t.Setenv("TYC_QUEUE_PATH", "/tmp/q.json")
	cfg := LoadCLIFromEnv()
	assert.Equal(t, "http://game.local:9000", cfg.APIBaseURL)
	assert.Equal(t, "/tmp/q.json", cfg.QueuePath)
}
