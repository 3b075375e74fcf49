package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"little_library/logger"
)

const appName = "little_library"

// Backend settings
type ServerConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"` // 0 keeps the transport default
}

// Local state settings
type StorageConfig struct {
	Path string `toml:"path"`
}

// UI settings
type UIConfig struct {
	Language string `toml:"language"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Root config
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// Global variable to hold config
var AppConfig = DefaultConfig()

// ---------------- Paths ----------------

// ConfigDir is ~/.config/little_library.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, ".config", appName)
}

func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// expandPath replaces leading "~" with user home dir
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func DefaultConfig() Config {
	dir := ConfigDir()
	return Config{
		Server:  ServerConfig{BaseURL: "http://localhost:8080"},
		Storage: StorageConfig{Path: filepath.Join(dir, "state.db")},
		UI:      UIConfig{Language: "en"},
		Log:     LogConfig{Level: "info", File: filepath.Join(dir, "client.log")},
	}
}

// Timeout is the HTTP client timeout; zero means none is set.
func (c Config) Timeout() time.Duration {
	if c.Server.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// ---------------- Load / Save ----------------

// LoadConfig reads path over the defaults, then applies .env files and
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return cfg, err
	}

	loadDotEnv(".env", filepath.Join(filepath.Dir(path), ".env"))
	applyEnv(&cfg)

	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Server.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Server.BaseURL), "/")

	AppConfig = cfg
	return cfg, nil
}

// readFile is the defaults overlaid with what path holds, nothing else.
func readFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// loadDotEnv loads each existing file. Variables already set win.
func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			logger.Warn("ignoring unreadable .env", "path", p, "error", err)
		}
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.BaseURL = getEnv("LITTLE_LIBRARY_SERVER", cfg.Server.BaseURL)
	cfg.Server.TimeoutSeconds = getEnvInt("LITTLE_LIBRARY_TIMEOUT", cfg.Server.TimeoutSeconds)
	cfg.Storage.Path = getEnv("LITTLE_LIBRARY_DB", cfg.Storage.Path)
	cfg.UI.Language = getEnv("LITTLE_LIBRARY_LANG", cfg.UI.Language)
	cfg.Log.Level = getEnv("LITTLE_LIBRARY_LOG_LEVEL", cfg.Log.Level)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// SaveLanguage stores language in the file at path. Other values are kept as
// the file has them, so environment overrides never end up in it.
func SaveLanguage(path, language string) error {
	cfg, err := readFile(path)
	if err != nil {
		return err
	}
	cfg.UI.Language = language
	if err := SaveConfig(path, cfg); err != nil {
		return err
	}
	AppConfig.UI.Language = language
	return nil
}

// SaveConfig writes cfg to path.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
