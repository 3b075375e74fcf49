package utils

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"little_library/logger"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LITTLE_LIBRARY_SERVER", "LITTLE_LIBRARY_TIMEOUT", "LITTLE_LIBRARY_DB",
		"LITTLE_LIBRARY_LANG", "LITTLE_LIBRARY_LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.Timeout())
	assert.Equal(t, "en", cfg.UI.Language)
	assert.Equal(t, "state.db", filepath.Base(cfg.Storage.Path))
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
base_url = "https://books.example/"
timeout_seconds = 5

[storage]
path = "~/library/state.db"

[ui]
language = "zh"
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LITTLE_LIBRARY_LOG_LEVEL=debug\n"), 0o644))
	t.Setenv("LITTLE_LIBRARY_TIMEOUT", "9")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, "https://books.example", cfg.Server.BaseURL)
	assert.Equal(t, 9*time.Second, cfg.Timeout())
	assert.Equal(t, filepath.Join(home, "library", "state.db"), cfg.Storage.Path)
	assert.Equal(t, "zh", cfg.UI.Language)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, cfg, AppConfig)
}

func TestLoadConfigParseError(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nbase_url ="), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.UI.Language = "zh"
	cfg.Server.BaseURL = "https://books.example"
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveLanguageKeepsFileValues(t *testing.T) {
	clearEnv(t)
	t.Cleanup(func() { AppConfig = DefaultConfig() })
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
base_url = "https://file.example"

[storage]
path = "~/library/state.db"
`), 0o644))
	t.Setenv("LITTLE_LIBRARY_SERVER", "https://env.example")

	_, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, SaveLanguage(path, "zh"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var saved Config
	require.NoError(t, toml.Unmarshal(data, &saved))
	assert.Equal(t, "https://file.example", saved.Server.BaseURL)
	assert.Equal(t, "~/library/state.db", saved.Storage.Path)
	assert.Equal(t, "zh", saved.UI.Language)

	assert.Equal(t, "zh", AppConfig.UI.Language)
	assert.Equal(t, "https://env.example", AppConfig.Server.BaseURL)
}

func TestLoadConfigWarnsOnBadDotEnv(t *testing.T) {
	clearEnv(t)
	var buf bytes.Buffer
	logger.Init("warn", &buf)
	t.Cleanup(func() { logger.Init("info", io.Discard) })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LITTLE_LIBRARY_LOG_LEVEL=\"debug\n"), 0o644))

	cfg, err := LoadConfig(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Contains(t, buf.String(), "ignoring unreadable .env")
}
