// ABOUTME: myjot configuration management with backend selection.
// ABOUTME: Handles settings, log level, and the storage gateway factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harperreed/myjot/internal/charm"
	"github.com/harperreed/myjot/internal/logging"
	"github.com/harperreed/myjot/internal/storage"
)

const (
	BackendBadger = "badger"
	BackendCharm  = "charm"

	// LogLevelEnv overrides the configured log level.
	LogLevelEnv = "MYJOT_LOG_LEVEL"
)

// Config stores myjot configuration.
type Config struct {
	// Backend selects the storage backend: "badger" (default) or "charm".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// Badger keeps its files in DataDir/badger. Charm manages its own directory.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/myjot.
	DataDir string `json:"data_dir,omitempty"`

	// UserName is written into new save files when the journal has no user yet.
	UserName string `json:"user_name,omitempty"`

	// LogLevel is one of debug, info, warn, error. Defaults to warn.
	LogLevel string `json:"log_level,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "badger".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendBadger
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetLogLevel returns the log level, letting MYJOT_LOG_LEVEL win over the file.
func (c *Config) GetLogLevel() string {
	if env := os.Getenv(LogLevelEnv); env != "" {
		return env
	}
	if c.LogLevel == "" {
		return logging.DefaultLevel
	}
	return c.LogLevel
}

// NewLogger builds the process logger on stderr at the configured level.
func (c *Config) NewLogger() *log.Logger {
	return logging.New(os.Stderr, c.GetLogLevel())
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenGateway opens the storage gateway of the configured backend.
func (c *Config) OpenGateway(logger *log.Logger) (storage.Gateway, error) {
	return c.OpenBackend(c.GetBackend(), logger)
}

// BadgerDir returns the directory of the badger store.
func (c *Config) BadgerDir() string {
	return filepath.Join(c.GetDataDir(), "badger")
}

// OpenBackend opens the named backend with this config's data directory.
func (c *Config) OpenBackend(backend string, logger *log.Logger) (storage.Gateway, error) {
	switch backend {
	case BackendBadger:
		return storage.Open(storage.BadgerConfig{
			Dir:    c.BadgerDir(),
			Logger: logger,
		})
	case BackendCharm:
		return charm.Open(logger)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "myjot", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
