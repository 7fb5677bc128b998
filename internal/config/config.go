// ABOUTME: Configuration management for the podcast directory CLI
// ABOUTME: JSON config under XDG paths with env overrides and a store factory

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"castkeep/internal/storage"
)

// AdminTokenEnv overrides the configured admin token when set. Keeping
// the token out of the config file is the expected setup; the file field
// exists for single-user machines.
const AdminTokenEnv = "CASTKEEP_ADMIN_TOKEN"

const dbFilename = "castkeep.db"

// Config stores castkeep settings. Zero values mean "use the default",
// so a missing or empty config file is fully functional.
type Config struct {
	// DataDir is the root directory for the SQLite database. Supports ~
	// expansion. Defaults to ~/.local/share/castkeep.
	DataDir string `json:"data_dir,omitempty"`

	// Proxies is the ordered CORS-proxy fallback chain for feed fetching.
	// Empty means the built-in chain.
	Proxies []string `json:"proxies,omitempty"`

	// FeedDelayMS is the pause between feeds during batch syncs, in
	// milliseconds. Zero means the default (one second).
	FeedDelayMS int `json:"feed_delay_ms,omitempty"`

	// DedupBatchSize caps one duplicate-removal batch. Zero means the
	// engine default.
	DedupBatchSize int `json:"dedup_batch_size,omitempty"`

	// AdminToken authorizes destructive operations. The CASTKEEP_ADMIN_TOKEN
	// environment variable takes precedence.
	AdminToken string `json:"admin_token,omitempty"`
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetFeedDelay returns the inter-feed sync delay.
func (c *Config) GetFeedDelay() time.Duration {
	if c.FeedDelayMS <= 0 {
		return time.Second
	}
	return time.Duration(c.FeedDelayMS) * time.Millisecond
}

// GetAdminToken returns the admin token, preferring the environment.
func (c *Config) GetAdminToken() string {
	if token := os.Getenv(AdminTokenEnv); token != "" {
		return token
	}
	return c.AdminToken
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

// OpenStore opens the SQLite store under the data directory, creating
// the directory if needed.
func (c *Config) OpenStore() (storage.Store, error) {
	dataDir := c.GetDataDir()
	if err := os.MkdirAll(dataDir, DefaultDirPerms); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return storage.NewSQLiteStore(filepath.Join(dataDir, dbFilename))
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "castkeep", "config.json")
}

// Load reads config from disk. A missing file yields the defaults.
func Load() (*Config, error) {
	data, err := os.ReadFile(GetConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to disk, creating the config directory if needed.
func (c *Config) Save() error {
	path := GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPerms); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// defaultDataDir returns the standard XDG data directory for castkeep.
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "castkeep")
}
