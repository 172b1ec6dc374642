package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Auth     AuthConfig     `toml:"auth"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Database DatabaseConfig `toml:"database"`
}

// APIConfig contains settings for the crate backend service.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
}

// AuthConfig contains settings for the auth server (GoTrue-compatible).
type AuthConfig struct {
	URL     string `toml:"url"`
	AnonKey string `toml:"anon_key"`
}

// CatalogConfig contains Discogs catalog settings.
//
// RequestsPerMinute caps client-side search traffic; Discogs allows 60
// authenticated requests per minute.
type CatalogConfig struct {
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// DatabaseConfig contains local cache database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// A .env file in the working directory (if present) and CRATE_* environment
// variables override file values, so credentials can stay out of config.toml.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnv layers .env and process environment values over the parsed config.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("CRATE_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CRATE_AUTH_URL"); v != "" {
		c.Auth.URL = v
	}
	if v := os.Getenv("CRATE_AUTH_ANON_KEY"); v != "" {
		c.Auth.AnonKey = v
	}
}
