package config

import (
	"flag"
	"os"
	"time"

	"github.com/mukimuddin/deadbox/internal/flagx"
)

var serverFlags = []string{
	"-a", "-d", "-s", "-t", "-r", "-l", "-f",
	"-u", "-p", "-b", "-g", "-e",
	"-sh", "-sp", "-su", "-sw", "-sf",
	"-i", "-n",
}

// parseFlags overlays Config fields from command-line flags.
//
//	-a string     HTTP bind address (e.g. ":3000")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t int        access token validity, minutes
//	-r int        refresh token validity, minutes
//	-l string     log level
//	-f string     frontend base URL used in emailed links
//	-u/-p/-b/-g/-e  S3 user, password, bucket, region, endpoint
//	-sh/-sp/-su/-sw/-sf  SMTP host, port, user, password, from address
//	-i duration   trigger poll interval (e.g. "24h")
//	-n duration   notifier timeout (e.g. "30s")
//
// Only the flags above are looked at; everything else in os.Args is ignored.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend base URL")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.SMTPHost, "sh", config.SMTPHost, "SMTP host (empty: log emails only)")
	fs.IntVar(&config.SMTPPort, "sp", config.SMTPPort, "SMTP port")
	fs.StringVar(&config.SMTPUser, "su", config.SMTPUser, "SMTP user")
	fs.StringVar(&config.SMTPPassword, "sw", config.SMTPPassword, "SMTP password")
	fs.StringVar(&config.SMTPFrom, "sf", config.SMTPFrom, "SMTP from address")

	fs.DurationVar(&config.TriggerPollInterval, "i", config.TriggerPollInterval, "trigger poll interval")
	fs.DurationVar(&config.NotifierTimeout, "n", config.NotifierTimeout, "notifier timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
}
