package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.LLM.BaseURL != "https://api.groq.com/openai/v1" || cfg.LLM.Model == "" {
		t.Fatalf("llm = %+v", cfg.LLM)
	}
	if cfg.Dietary.Mode != "enforce" {
		t.Fatalf("dietary mode = %q", cfg.Dietary.Mode)
	}
	if cfg.Session.Store != "memory" || cfg.Session.TTL != 2*time.Hour {
		t.Fatalf("session = %+v", cfg.Session)
	}
	if cfg.Audio.MaxSizeBytes != 25*1024*1024 {
		t.Fatalf("audio max = %d", cfg.Audio.MaxSizeBytes)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	t.Setenv("GROQ_API_KEY", "gsk_test_key_1234")
	t.Setenv("DIETARY_MODE", "warn")
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("RATE_LIMIT_REQUESTS", "7")
	t.Setenv("APP_SERVER_PORT", "9090")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.APIKey != "gsk_test_key_1234" || cfg.Transcribe.RemoteKey != "gsk_test_key_1234" {
		t.Fatalf("api keys not bound: llm %q transcribe %q", cfg.LLM.APIKey, cfg.Transcribe.RemoteKey)
	}
	if cfg.Dietary.Mode != "warn" {
		t.Fatalf("dietary mode = %q", cfg.Dietary.Mode)
	}
	if cfg.RateLimit.Requests != 7 {
		t.Fatalf("rate limit = %d", cfg.RateLimit.Requests)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }, "port"},
		{"model", func(c *Config) { c.LLM.Model = "" }, "model"},
		{"backend", func(c *Config) { c.Transcribe.Backend = "vosk" }, "transcribe backend"},
		{"dietary", func(c *Config) { c.Dietary.Mode = "strict" }, "dietary mode"},
		{"cache", func(c *Config) { c.Cache.MaxSize = 0 }, "cache max size"},
		{"store", func(c *Config) { c.Session.Store = "sqlite" }, "session store"},
		{"workers", func(c *Config) { c.Queue.Workers = 0 }, "queue workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}

	cfg := Default()
	cfg.Cache.Enabled = false
	cfg.Cache.MaxSize = 0
	if err := Validate(cfg); err != nil {
		t.Fatalf("disabled cache should skip checks: %v", err)
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey("short"); got != "****" {
		t.Fatalf("got %q", got)
	}
	if got := MaskAPIKey("gsk_abcdefgh1234"); got != "gsk_...1234" {
		t.Fatalf("got %q", got)
	}
}
