package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/mukimuddin/deadbox/internal/timex"
)

const envPrefix = "deadbox"

// EnvConfig lists the settings that may come from the environment, mainly
// secrets that should not live in a config file. Each variable is read as
// DEADBOX_<NAME> and falls back to the bare <NAME>.
type EnvConfig struct {
	HTTPAddr    string   `envconfig:"HTTP_ADDR"`
	DatabaseDSN string   `envconfig:"DATABASE_DSN"`
	LogLevel    string   `envconfig:"LOG_LEVEL"`
	FrontendURL string   `envconfig:"FRONTEND_URL"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`

	SecretKey                string `envconfig:"JWT_SECRET"`
	UnlockRateLimitPerMinute int    `envconfig:"UNLOCK_RATE_LIMIT_PER_MINUTE"`

	S3RootUser     string `envconfig:"S3_ACCESS_KEY"`
	S3RootPassword string `envconfig:"S3_SECRET_KEY"`
	S3Bucket       string `envconfig:"S3_BUCKET"`
	S3Region       string `envconfig:"S3_REGION"`
	S3BaseEndpoint string `envconfig:"S3_ENDPOINT"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT"`
	SMTPUser     string `envconfig:"SMTP_USER"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM"`
	SMTPUseTLS   *bool  `envconfig:"SMTP_USE_TLS"`

	TriggerPollInterval time.Duration `envconfig:"TRIGGER_POLL_INTERVAL"`
}

// parseEnv overlays values found in the environment. Malformed values
// (e.g. SMTP_PORT=abc) panic, like a bad config file.
func parseEnv(config *Config) {
	var c EnvConfig
	if err := envconfig.Process(envPrefix, &c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.FrontendURL, c.FrontendURL)
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}

	setString(&config.SecretKey, c.SecretKey)
	setInt(&config.UnlockRateLimitPerMinute, c.UnlockRateLimitPerMinute)

	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	if c.SMTPUseTLS != nil {
		config.SMTPUseTLS = *c.SMTPUseTLS
	}

	setDuration(&config.TriggerPollInterval, timex.Duration{Duration: c.TriggerPollInterval})
}
