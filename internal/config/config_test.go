package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{"returns default when not set", "TEST_KEY_UNSET", "default", "", "default"},
		{"returns env value when set", "TEST_KEY_SET", "default", "custom", "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue bool
		envValue     string
		want         bool
	}{
		{"returns default when not set", "TEST_BOOL_UNSET", true, "", true},
		{"parses true", "TEST_BOOL_TRUE", false, "true", true},
		{"parses 1", "TEST_BOOL_ONE", false, "1", true},
		{"ignores garbage", "TEST_BOOL_BAD", true, "maybe", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnvBool(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue time.Duration
		envValue     string
		want         time.Duration
	}{
		{"returns default when not set", "TEST_DUR_UNSET", time.Minute, "", time.Minute},
		{"parses duration", "TEST_DUR_SET", time.Minute, "30s", 30 * time.Second},
		{"ignores garbage", "TEST_DUR_BAD", 5 * time.Second, "soon", 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnvDuration(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvDuration(%q, %v) = %v, want %v", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.StorageBackend != BackendLocal {
			t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, BackendLocal)
		}
		if cfg.CatalogCacheTTL != time.Minute {
			t.Errorf("CatalogCacheTTL = %v, want 1m", cfg.CatalogCacheTTL)
		}
	})

	t.Run("rejects unknown backend", func(t *testing.T) {
		os.Setenv("PATHWAY_STORAGE_BACKEND", "tape")
		defer os.Unsetenv("PATHWAY_STORAGE_BACKEND")

		if _, err := Load(); err == nil {
			t.Error("Load() accepted unknown storage backend")
		}
	})

	t.Run("selects postgres", func(t *testing.T) {
		os.Setenv("PATHWAY_STORAGE_BACKEND", BackendPostgres)
		os.Setenv("PATHWAY_DATABASE_URL", "postgres://u:p@db:5432/pathway")
		defer os.Unsetenv("PATHWAY_STORAGE_BACKEND")
		defer os.Unsetenv("PATHWAY_DATABASE_URL")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.StorageBackend != BackendPostgres {
			t.Errorf("StorageBackend = %q, want postgres", cfg.StorageBackend)
		}
		if cfg.DatabaseURL != "postgres://u:p@db:5432/pathway" {
			t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
		}
	})
}
