// Package config loads and persists the vault client configuration: a JSON
// file under <home>/config/ with embedded defaults, plus optional overrides
// from a .env file in the working directory.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	configSubdir   = "config"
	configFileName = "r1vault_config.json"
)

//go:embed default_config.json
var defaultConfigJSON []byte

func validateConfig(cfg *Config) error {
	if cfg.LogLevel < -1 || cfg.LogLevel > 5 {
		return fmt.Errorf("log level must be between -1 and 5")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}

	if len(cfg.RPCURLs) == 0 {
		cfg.RPCURLs = []string{"http://localhost:8899"}
	}
	if cfg.KeypairFile == "" {
		cfg.KeypairFile = "payer.json"
	}
	if cfg.AuthorizingKeyFile == "" {
		cfg.AuthorizingKeyFile = "authorizing_key.pem"
	}
	if cfg.DatabaseFile == "" {
		cfg.DatabaseFile = "vault_data.db"
	}
	if cfg.WithdrawExpirySeconds <= 0 {
		cfg.WithdrawExpirySeconds = 120
	}

	return nil
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	cfg := new(Config)
	if err := json.Unmarshal(defaultConfigJSON, cfg); err != nil {
		return nil, fmt.Errorf("invalid embedded default config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration under basePath, falling back to the embedded
// defaults when no file exists yet. A .env file in the working directory is
// loaded first so environment-driven overrides are visible to callers.
func Load(basePath string) (*Config, error) {
	_ = godotenv.Load()

	path := filepath.Join(basePath, configSubdir, configFileName)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := new(Config)
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the given config to <basePath>/config/r1vault_config.json.
func Save(cfg *Config, basePath string) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	configDir := filepath.Join(basePath, configSubdir)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	path := filepath.Join(configDir, configFileName)
	if err := os.WriteFile(path, raw, 0o640); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
