package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig is read from DEADBOX_SERVER_URL, DEADBOX_SESSION_DB and
// DEADBOX_REQUEST_TIMEOUT ("15s").
type EnvConfig struct {
	ServerURL      string        `split_words:"true"`
	SessionDB      string        `envconfig:"SESSION_DB"`
	RequestTimeout time.Duration `split_words:"true"`
}

func parseEnv(cfg *Config) {
	var ec EnvConfig
	if err := envconfig.Process("deadbox", &ec); err != nil {
		panic(err)
	}

	if ec.ServerURL != "" {
		cfg.ServerURL = ec.ServerURL
	}
	if ec.SessionDB != "" {
		cfg.SessionDB = ec.SessionDB
	}
	if ec.RequestTimeout != 0 {
		cfg.RequestTimeout = ec.RequestTimeout
	}
}
