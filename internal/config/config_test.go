package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if len(cfg.Kinds) != 2 || cfg.Kinds[0] != "brace" || cfg.Kinds[1] != "paren" {
		t.Errorf("expected default kinds [brace paren], got %v", cfg.Kinds)
	}
	if cfg.Strategy != "scan" {
		t.Errorf("expected strategy scan, got %q", cfg.Strategy)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected job ttl 1h, got %s", cfg.JobTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BRACECHECK_PORT", "9999")
	t.Setenv("BRACECHECK_CHECK_KINDS", "brace, bracket")
	t.Setenv("BRACECHECK_WORKER_COUNT", "-3")
	t.Setenv("BRACECHECK_CACHE_TTL", "30s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("expected port 9999, got %q", cfg.Port)
	}
	if len(cfg.Kinds) != 2 || cfg.Kinds[1] != "bracket" {
		t.Errorf("expected kinds [brace bracket], got %v", cfg.Kinds)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected non-positive worker count to fall back to 4, got %d", cfg.WorkerCount)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("expected cache ttl 30s, got %s", cfg.CacheTTL)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bracecheck.yaml")
	data := "port: \"7000\"\ncheck:\n  strategy: tokenizer\n  include_tags: true\n  kinds: [paren]\nlog:\n  format: text\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7000" || cfg.Strategy != "tokenizer" || !cfg.IncludeTags {
		t.Errorf("config file not applied: %+v", cfg)
	}
	if len(cfg.Kinds) != 1 || cfg.Kinds[0] != "paren" {
		t.Errorf("expected kinds [paren], got %v", cfg.Kinds)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	base := Config{Kinds: []string{"brace"}, Strategy: "scan", LogLevel: "debug", LogFormat: "json"}
	if err := base.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []Config{
		{Kinds: []string{"angle"}},
		{Strategy: "regex"},
		{LogFormat: "xml"},
		{LogLevel: "loud"},
	}
	for _, c := range bad {
		if err := c.Validate(); err == nil {
			t.Errorf("expected validation error for %+v", c)
		}
	}
}
