//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	p := writeConfig(t, "log:\n  format: console\n")

	cfg, err := LoadConfig(p, true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.AI.VideoPollInterval != 5*time.Second || cfg.AI.VideoMaxPolls != 60 {
		t.Errorf("unexpected video polling defaults: %v / %d", cfg.AI.VideoPollInterval, cfg.AI.VideoMaxPolls)
	}
	if cfg.AI.ImageModel != "gemini-3-pro-image-preview" {
		t.Errorf("unexpected image model default %q", cfg.AI.ImageModel)
	}
	if cfg.Redis.TTL != time.Hour {
		t.Errorf("expected ttl normalized to 1h, got %v", cfg.Redis.TTL)
	}
	if cfg.Log.Format != "console" || !cfg.Runtime.Dev {
		t.Errorf("expected yaml and runtime values to be kept, got %+v %+v", cfg.Log, cfg.Runtime)
	}
}

func TestLoadConfig_EnvOverridesYAML(t *testing.T) {
	p := writeConfig(t, "ai:\n  gemini_key: from-yaml\nhttp:\n  port: 9000\n")
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("HTTP_PORT", "7001")

	cfg, err := LoadConfig(p, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.AI.GeminiKey != "from-env" {
		t.Errorf("expected env key to win, got %q", cfg.AI.GeminiKey)
	}
	if cfg.HTTP.Port != 7001 {
		t.Errorf("expected env port to win, got %d", cfg.HTTP.Port)
	}
}

func TestLoadConfig_MissingFileIsAllowed(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
	if err != nil {
		t.Fatalf("expected env-only load to succeed, got %v", err)
	}
	if cfg.Run.DefaultMode != "campaign" {
		t.Errorf("expected campaign default mode, got %q", cfg.Run.DefaultMode)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "ai: [\n"},
		{"unknown provider", "ai:\n  default_provider: metis\n"},
		{"unknown mode", "run:\n  default_mode: gallery\n"},
		{"negative limit", "ai:\n  concurrent_limit: -1\n"},
		{"negative submit rate", "http:\n  submits_per_minute: -5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body), false); err == nil {
				t.Fatal("expected an error, got nil")
			}
		})
	}
}
