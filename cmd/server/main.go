package main

import (
	"context"
	"log"
	"os"

	"github.com/mukimuddin/deadbox/internal/buildinfo"
	"github.com/mukimuddin/deadbox/internal/server"
	"github.com/mukimuddin/deadbox/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
