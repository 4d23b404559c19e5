package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Invoker.Mode != "nats" {
		t.Errorf("invoker mode = %q", cfg.Invoker.Mode)
	}
	if cfg.Delegation.MaxParallel != 4 {
		t.Errorf("max_parallel = %d", cfg.Delegation.MaxParallel)
	}
	if cfg.Registry.CacheTTL != 5*time.Minute {
		t.Errorf("cache_ttl = %v", cfg.Registry.CacheTTL)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreman.yaml")
	yaml := `
server:
  port: "9090"
registry:
  card_dir: /etc/foreman/cards
  strict: true
invoker:
  mode: local
delegation:
  max_parallel: 8
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Registry.CardDir != "/etc/foreman/cards" {
		t.Errorf("card_dir = %q", cfg.Registry.CardDir)
	}
	if !cfg.Registry.Strict {
		t.Error("strict not set")
	}
	if cfg.Invoker.Mode != "local" {
		t.Errorf("mode = %q", cfg.Invoker.Mode)
	}
	if cfg.Delegation.MaxParallel != 8 {
		t.Errorf("max_parallel = %d", cfg.Delegation.MaxParallel)
	}
	// Untouched keys keep their defaults.
	if cfg.Delegation.Identity == "" {
		t.Error("identity default lost")
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreman.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FOREMAN_PORT", "7070")
	t.Setenv("FOREMAN_SPECIALIST_URLS", "http://a:8001, http://b:8002")
	t.Setenv("FOREMAN_REGISTRY_RELOAD_INTERVAL", "30s")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if len(cfg.Registry.SpecialistURLs) != 2 || cfg.Registry.SpecialistURLs[1] != "http://b:8002" {
		t.Errorf("specialist_urls = %v", cfg.Registry.SpecialistURLs)
	}
	if cfg.Registry.ReloadInterval != 30*time.Second {
		t.Errorf("reload_interval = %v", cfg.Registry.ReloadInterval)
	}
}

func TestLoadRejectsBadInvokerMode(t *testing.T) {
	t.Setenv("FOREMAN_INVOKER_MODE", "carrier-pigeon")

	if _, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadRequiresNATSURLForNATSMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreman.yaml")
	if err := os.WriteFile(path, []byte("nats:\n  url: \"\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected validation error for empty nats.url")
	}
}

func TestLoadRejectsBadMaxParallel(t *testing.T) {
	t.Setenv("FOREMAN_MAX_PARALLEL", "0")

	if _, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected validation error")
	}
}
