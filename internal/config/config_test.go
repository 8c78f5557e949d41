package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileReadsYAMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	body := []byte("server:\n  port: \"9090\"\n  mode: release\ncrossref:\n  doi_prefix: \"10.5555\"\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || !cfg.IsRelease() {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Crossref.DOIPrefix != "10.5555" {
		t.Fatalf("doi prefix = %q", cfg.Crossref.DOIPrefix)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Pool.MaxOpenConns != 1 {
		t.Fatalf("database defaults not applied: %+v", cfg.Database)
	}
}

func TestLoadFileEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("jwt:\n  expire_hours: 12\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("JWT_EXPIRE_HOURS", "48")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWT.ExpireHours != 48 {
		t.Fatalf("expire hours = %d, want env value 48", cfg.JWT.ExpireHours)
	}
}

func TestLoadFileMissingExplicitPath(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestWeakJWTSecret(t *testing.T) {
	cases := map[string]bool{
		"":                                  true,
		"short":                             true,
		"change-me-in-production-please-00": true,
		"Rk9bq2Zt8vYp4LmN7xWc3HsJ6dQe1UaF": false,
	}
	for secret, want := range cases {
		cfg := &Config{JWT: JWTConfig{SecretKey: secret}}
		if got := cfg.WeakJWTSecret(); got != want {
			t.Fatalf("WeakJWTSecret(%q) = %v, want %v", secret, got, want)
		}
	}
}
