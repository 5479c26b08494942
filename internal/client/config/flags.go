package config

import (
	"flag"
	"os"
	"time"

	"github.com/mukimuddin/deadbox/internal/flagx"
)

var cliFlags = []string{"-a", "-d", "-t"}

// parseFlags populates selected Config fields from command-line flags and
// collects the positional arguments.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], cliFlags)
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the deadbox API")
	fs.StringVar(&cfg.SessionDB, "d", cfg.SessionDB, "path of the local session database")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	if err := fs.Parse(args); err != nil {
		panic(err)
	}
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.Args = flagx.Positional(os.Args[1:], cliFlags)
}
