// Package config holds the startup-time configuration of the server.
// All values are fixed once the process is up; there is no runtime
// reconfiguration surface.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the full configuration surface: where to listen, how many
// workers to run, where the canned response bodies come from, and how
// long the sleep route suspends its worker.
type Config struct {
	ListenAddress string `json:"listen_address"`
	ListenPort    int    `json:"listen_port"`
	PoolSize      int    `json:"pool_size"`

	// SuccessAsset and NotFoundAsset are paths to the files served as
	// response bodies. An empty path falls back to a built-in body.
	SuccessAsset  string `json:"success_asset"`
	NotFoundAsset string `json:"not_found_asset"`

	// SlowDelayMS is the artificial delay of the sleep route, in
	// milliseconds. Kept configurable so tests can use short delays.
	SlowDelayMS int `json:"slow_delay_ms"`
}

// Default returns the documented default configuration.
func Default() *Config {
	return &Config{
		ListenAddress: "127.0.0.1",
		ListenPort:    7878,
		PoolSize:      4,
		SuccessAsset:  "hello.html",
		NotFoundAsset: "404.html",
		SlowDelayMS:   5000,
	}
}

// Load reads configuration from a JSON file, overlaying the defaults. A
// missing file is not an error; the defaults are used as-is. A PORT
// environment variable, when set, overrides the configured port. The
// result is validated before being returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if port := os.Getenv("PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT value %q: %w", port, err)
		}
		cfg.ListenPort = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration can actually run a server.
func (c *Config) Validate() error {
	if c.ListenPort < 1 || c.ListenPort > 65535 {
		return fmt.Errorf("listen_port must be between 1 and 65535, got %d", c.ListenPort)
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("pool_size must be at least 1, got %d", c.PoolSize)
	}
	if c.SlowDelayMS < 0 {
		return fmt.Errorf("slow_delay_ms must not be negative, got %d", c.SlowDelayMS)
	}
	return nil
}

// Addr returns the host:port string the listener binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ListenAddress, c.ListenPort)
}

// SlowDelay returns the sleep-route delay as a duration.
func (c *Config) SlowDelay() time.Duration {
	return time.Duration(c.SlowDelayMS) * time.Millisecond
}
