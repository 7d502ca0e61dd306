package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("CLIENT_BASE_URL", "")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != DefaultBackendURL {
		t.Fatalf("BackendURL = %q, want %q", cfg.BackendURL, DefaultBackendURL)
	}
	if cfg.Port != DefaultPort {
		t.Fatalf("Port = %q, want %q", cfg.Port, DefaultPort)
	}
	if cfg.ClientBaseURL != "http://localhost:8080/api" {
		t.Fatalf("ClientBaseURL = %q", cfg.ClientBaseURL)
	}
	if cfg.CookieSecure {
		t.Fatalf("CookieSecure should default to false")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://api.example.com/")
	t.Setenv("PORT", ":9090")
	t.Setenv("CLIENT_BASE_URL", "")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "https://api.example.com" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.BackendURL)
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.ClientBaseURL != "http://localhost:9090/api" {
		t.Fatalf("ClientBaseURL = %q", cfg.ClientBaseURL)
	}
	if !cfg.CookieSecure || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("CLIENT_BASE_URL", "")

	dir := t.TempDir()
	yml := "port: \"7000\"\nbackend:\n  url: http://backend.internal:8081\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" || cfg.BackendURL != "http://backend.internal:8081" {
		t.Fatalf("config file not applied: %+v", cfg)
	}
}

func TestLoad_RejectsBadBackendURL(t *testing.T) {
	cases := []string{"ftp://backend", "backend:8081", "http://"}
	for _, raw := range cases {
		t.Run(raw, func(t *testing.T) {
			t.Setenv("BACKEND_URL", raw)
			_, err := Load(t.TempDir())
			if err == nil {
				t.Fatalf("expected error for %q", raw)
			}
			if !strings.Contains(err.Error(), KeyBackendURL) {
				t.Fatalf("error should name the key, got %v", err)
			}
		})
	}
}
