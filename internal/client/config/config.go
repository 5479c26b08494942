package config

import "time"

// Config holds runtime settings for the deadbox CLI.
type Config struct {
	ServerURL      string
	SessionDB      string
	RequestTimeout time.Duration
	// Args are the positional arguments, e.g. ["checkin"].
	Args []string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.SessionDB = "deadbox-session.db"
	c.RequestTimeout = 15 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
