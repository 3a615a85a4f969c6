package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Relays) == 0 {
		t.Error("no default relays")
	}
	if cfg.ProfileTTL() != time.Hour {
		t.Errorf("ProfileTTL = %v", cfg.ProfileTTL())
	}
	if cfg.RecencyWindow() != 2*time.Minute {
		t.Errorf("RecencyWindow = %v", cfg.RecencyWindow())
	}
	if cfg.BlinkCycles != 3 || cfg.BlinkInterval() != 250*time.Millisecond {
		t.Errorf("blink defaults = %d, %v", cfg.BlinkCycles, cfg.BlinkInterval())
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
relays = ["wss://relay.example.com"]
redis_url = "redis://localhost:6379"
profile_ttl_minutes = 5
recency_window_seconds = 30
blink_cycles = 2
blink_interval_ms = 100
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Relays) != 1 || cfg.Relays[0] != "wss://relay.example.com" {
		t.Errorf("Relays = %v", cfg.Relays)
	}
	if cfg.RedisURL != "redis://localhost:6379" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.ProfileTTL() != 5*time.Minute {
		t.Errorf("ProfileTTL = %v", cfg.ProfileTTL())
	}
	if cfg.RecencyWindow() != 30*time.Second {
		t.Errorf("RecencyWindow = %v", cfg.RecencyWindow())
	}
}

func TestLoadPartialFileBackfillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`blink_cycles = -1`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BlinkCycles != 3 {
		t.Errorf("negative blink_cycles not backfilled: %d", cfg.BlinkCycles)
	}
	if len(cfg.Relays) == 0 {
		t.Error("relays not backfilled")
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`relays = [`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed file did not error")
	}
}
