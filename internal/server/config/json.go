package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mukimuddin/deadbox/internal/flagx"
	"github.com/mukimuddin/deadbox/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Interval fields
// use timex.Duration so both "24h" and integer nanoseconds are accepted.
type JsonConfig struct {
	HTTPAddr    string   `json:"http_addr"`
	DatabaseDSN string   `json:"database_dsn"`
	LogLevel    string   `json:"log_level"`
	FrontendURL string   `json:"frontend_url"`
	CORSOrigins []string `json:"cors_origins"`

	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	AuthRateLimitPerMinute       int            `json:"auth_rate_limit_per_minute"`
	UnlockRateLimitPerMinute     int            `json:"unlock_rate_limit_per_minute"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`

	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"`
	SMTPFrom     string `json:"smtp_from"`
	SMTPUseTLS   *bool  `json:"smtp_use_tls"`

	TriggerPollInterval     timex.Duration `json:"trigger_poll_interval"`
	NotifierTimeout         timex.Duration `json:"notifier_timeout"`
	CleanupInterval         timex.Duration `json:"cleanup_interval"`
	UnverifiedAccountMaxAge timex.Duration `json:"unverified_account_max_age"`
}

// parseJson overlays values from the JSON file named by -c/-config onto
// config. Fields absent from the file keep their current value. A missing
// flag means no file is read; an unreadable or invalid file panics.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
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
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setInt(&config.AuthRateLimitPerMinute, c.AuthRateLimitPerMinute)
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

	setDuration(&config.TriggerPollInterval, c.TriggerPollInterval)
	setDuration(&config.NotifierTimeout, c.NotifierTimeout)
	setDuration(&config.CleanupInterval, c.CleanupInterval)
	setDuration(&config.UnverifiedAccountMaxAge, c.UnverifiedAccountMaxAge)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
