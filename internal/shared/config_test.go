package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL == "" {
			t.Error("expected default API base URL")
		}
		if config.Auth.URL == "" {
			t.Error("expected default auth URL")
		}
		if config.Catalog.RequestsPerMinute != 60 {
			t.Errorf("expected 60 requests per minute, got %d", config.Catalog.RequestsPerMinute)
		}
		if config.Database.Path == "" {
			t.Error("expected default database path")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("Parses File", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			content := `
[api]
base_url = "https://crate.example.com/api"

[auth]
url = "https://auth.example.com/auth/v1"
anon_key = "anon-key"

[catalog]
requests_per_minute = 30

[database]
path = "/tmp/crate-test.db"
`
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("expected successful load, got %v", err)
			}

			if config.API.BaseURL != "https://crate.example.com/api" {
				t.Errorf("unexpected base URL %q", config.API.BaseURL)
			}
			if config.Auth.AnonKey != "anon-key" {
				t.Errorf("unexpected anon key %q", config.Auth.AnonKey)
			}
			if config.Catalog.RequestsPerMinute != 30 {
				t.Errorf("unexpected rate limit %d", config.Catalog.RequestsPerMinute)
			}
		})

		t.Run("Missing File", func(t *testing.T) {
			if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
				t.Error("expected error for missing config file")
			}
		})

		t.Run("Invalid TOML", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			os.WriteFile(path, []byte("not [valid toml"), 0644)

			if _, err := LoadConfig(path); err == nil {
				t.Error("expected error for invalid TOML")
			}
		})

		t.Run("Environment Overrides", func(t *testing.T) {
			t.Setenv("CRATE_API_URL", "https://override.example.com/api")
			t.Setenv("CRATE_AUTH_ANON_KEY", "env-key")

			config := DefaultConfig()

			if config.API.BaseURL != "https://override.example.com/api" {
				t.Errorf("expected env override, got %q", config.API.BaseURL)
			}
			if config.Auth.AnonKey != "env-key" {
				t.Errorf("expected env anon key, got %q", config.Auth.AnonKey)
			}
		})
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected file creation, got %v", err)
		}

		if _, err := LoadConfig(path); err != nil {
			t.Errorf("created file should parse, got %v", err)
		}

		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when file already exists")
		}
	})
}
