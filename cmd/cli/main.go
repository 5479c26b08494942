package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mukimuddin/deadbox/internal/buildinfo"
	"github.com/mukimuddin/deadbox/internal/client/cli"
	"github.com/mukimuddin/deadbox/internal/client/config"
)

func main() {

	cfg := config.LoadConfig()
	if len(cfg.Args) == 0 {
		buildinfo.PrintBuildData(os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
