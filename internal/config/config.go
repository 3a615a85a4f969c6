// Package config loads the feed client's TOML configuration and sets
// up logging.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the TOML file schema.
type Config struct {
	Relays   []string `toml:"relays"`
	RedisURL string   `toml:"redis_url"`

	ProfileTTLMinutes    int `toml:"profile_ttl_minutes"`
	RecencyWindowSeconds int `toml:"recency_window_seconds"`
	BlinkCycles          int `toml:"blink_cycles"`
	BlinkIntervalMs      int `toml:"blink_interval_ms"`
}

func defaultConfig() Config {
	return Config{
		Relays: []string{
			"wss://relay.damus.io",
			"wss://relay.nostr.band",
			"wss://nos.lol",
		},
		ProfileTTLMinutes:    60,
		RecencyWindowSeconds: 120,
		BlinkCycles:          3,
		BlinkIntervalMs:      250,
	}
}

func configPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv("NOORNOTE_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "noornote", "config.toml")
}

// Load reads the config file, falling back to defaults when it does
// not exist. Zero or negative numeric fields fall back too.
func Load(flagPath string) (Config, error) {
	cfg := defaultConfig()

	path := configPath(flagPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	def := defaultConfig()
	if len(cfg.Relays) == 0 {
		cfg.Relays = def.Relays
	}
	if cfg.ProfileTTLMinutes <= 0 {
		cfg.ProfileTTLMinutes = def.ProfileTTLMinutes
	}
	if cfg.RecencyWindowSeconds <= 0 {
		cfg.RecencyWindowSeconds = def.RecencyWindowSeconds
	}
	if cfg.BlinkCycles <= 0 {
		cfg.BlinkCycles = def.BlinkCycles
	}
	if cfg.BlinkIntervalMs <= 0 {
		cfg.BlinkIntervalMs = def.BlinkIntervalMs
	}

	return cfg, nil
}

// ProfileTTL is the service-side metadata memo TTL.
func (c Config) ProfileTTL() time.Duration {
	return time.Duration(c.ProfileTTLMinutes) * time.Minute
}

// RecencyWindow is how long after an identity change a further change
// still blinks.
func (c Config) RecencyWindow() time.Duration {
	return time.Duration(c.RecencyWindowSeconds) * time.Second
}

// BlinkInterval is the frame spacing of the blink transition.
func (c Config) BlinkInterval() time.Duration {
	return time.Duration(c.BlinkIntervalMs) * time.Millisecond
}
