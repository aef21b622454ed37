package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/plateledger/internal/buildinfo"
	"github.com/dmitrijs2005/plateledger/internal/logging"
	"github.com/dmitrijs2005/plateledger/internal/server"
	"github.com/dmitrijs2005/plateledger/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.NewJSON(os.Stdout, cfg.SlogLevel())

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "app failed", "error", err)
	}

}
