// Package config loads daemon configuration: compiled defaults, an
// optional TOML file, and a PORT environment override, in that order of
// precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable of the daemon.
type Config struct {
	Port   int          `toml:"port"`
	Chrome ChromeConfig `toml:"chrome"`
	Limits LimitsConfig `toml:"limits"`
}

// ChromeConfig controls how the headless browser is located and launched.
type ChromeConfig struct {
	Path         string `toml:"path"`
	NoSandbox    bool   `toml:"no_sandbox"`
	AutoDownload bool   `toml:"auto_download"`
	PoolSize     int    `toml:"pool_size"`
}

// LimitsConfig bounds the pipeline stages.
type LimitsConfig struct {
	FetchTimeoutSeconds  int `toml:"fetch_timeout_seconds"`
	RenderTimeoutSeconds int `toml:"render_timeout_seconds"`
	SettleDelayMillis    int `toml:"settle_delay_millis"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Port: 8080,
		Chrome: ChromeConfig{
			PoolSize: 4,
		},
		Limits: LimitsConfig{
			FetchTimeoutSeconds:  30,
			RenderTimeoutSeconds: 30,
			SettleDelayMillis:    2000,
		},
	}
}

// Load builds the effective configuration. path may be empty (defaults
// only). A PORT environment variable, when set, wins over both.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 || n > 65535 {
			return Config{}, fmt.Errorf("config: invalid PORT %q", port)
		}
		cfg.Port = n
	}

	if cfg.Chrome.PoolSize <= 0 {
		cfg.Chrome.PoolSize = Default().Chrome.PoolSize
	}
	return cfg, nil
}

// FetchTimeout returns the fetch stage bound as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Limits.FetchTimeoutSeconds) * time.Second
}

// RenderTimeout returns the render stage bound as a duration.
func (c Config) RenderTimeout() time.Duration {
	return time.Duration(c.Limits.RenderTimeoutSeconds) * time.Second
}

// SettleDelay returns the script-settling wait as a duration.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.Limits.SettleDelayMillis) * time.Millisecond
}
