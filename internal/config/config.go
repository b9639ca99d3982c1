// Package config provides configuration loading and structs for the taberu server and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvDebug        = "TABERU_DEBUG"
	EnvPort         = "TABERU_PORT"
	EnvDatabasePath = "TABERU_DATABASE_PATH"
	EnvCatalogPath  = "TABERU_CATALOG_PATH"
	EnvOFFBaseURL   = "TABERU_OFF_BASE_URL"
	EnvOFFUserAgent = "TABERU_OFF_USER_AGENT"
	EnvOFFOffline   = "TABERU_OFF_OFFLINE"
)

// Config holds all configuration for the application.
type Config struct {
	Debug         bool                `yaml:"debug"`
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	OpenFoodFacts OpenFoodFactsConfig `yaml:"openfoodfacts"`
	Search        SearchConfig        `yaml:"search"`
	Import        ImportConfig        `yaml:"import"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr is host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig holds paths for the database and the catalog index.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	CatalogPath  string `yaml:"catalog_path"`
}

// OpenFoodFactsConfig holds the remote product database client settings.
type OpenFoodFactsConfig struct {
	BaseURL        string `yaml:"base_url"`
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	PageSize       int    `yaml:"page_size"`
	CacheSize      int    `yaml:"cache_size"`
	// Offline serves lookups and searches from the local catalog only.
	Offline bool `yaml:"offline"`
}

// Timeout is the per-request timeout.
func (o OpenFoodFactsConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// SearchConfig holds search-as-you-type and list settings.
type SearchConfig struct {
	DebounceMillis int `yaml:"debounce_ms"`
	HistoryLimit   int `yaml:"history_limit"`
	// CatalogLimit caps local catalog search hits.
	CatalogLimit int `yaml:"catalog_limit"`
}

// Debounce is the quiet period before a typed query is searched.
func (s SearchConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMillis) * time.Millisecond
}

// ImportConfig holds the bulk import directory watch settings.
type ImportConfig struct {
	Directories  []string `yaml:"directories"`
	Extensions   []string `yaml:"extensions"`
	SettleMillis int      `yaml:"settle_ms"`
}

// Settle is how long a file must stay unchanged before it is imported.
func (i ImportConfig) Settle() time.Duration {
	return time.Duration(i.SettleMillis) * time.Millisecond
}

// Default returns a config with every default applied, for running without a file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.CatalogPath = expandPath(cfg.Storage.CatalogPath, configDir)
	for i := range cfg.Import.Directories {
		cfg.Import.Directories[i] = expandPath(cfg.Import.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ApplyEnv loads envFile (skipped when it does not exist) into the process
// environment without replacing variables already set, then applies the
// TABERU_* overrides to cfg.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if v := os.Getenv(EnvDebug); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebug, err)
		}
		cfg.Debug = b
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(EnvDatabasePath); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv(EnvCatalogPath); v != "" {
		cfg.Storage.CatalogPath = v
	}
	if v := os.Getenv(EnvOFFBaseURL); v != "" {
		cfg.OpenFoodFacts.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv(EnvOFFUserAgent); v != "" {
		cfg.OpenFoodFacts.UserAgent = v
	}
	if v := os.Getenv(EnvOFFOffline); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvOFFOffline, err)
		}
		cfg.OpenFoodFacts.Offline = b
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
