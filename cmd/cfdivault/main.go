package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/acuellar/cfdivault/internal/buildinfo"
	"github.com/acuellar/cfdivault/internal/cli"
	"github.com/acuellar/cfdivault/internal/config"
	"github.com/acuellar/cfdivault/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
