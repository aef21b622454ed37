package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/plateledger/internal/buildinfo"
	"github.com/dmitrijs2005/plateledger/internal/client/cli"
	"github.com/dmitrijs2005/plateledger/internal/client/config"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run())
}

func run() int {

	cfg, args, err := config.LoadConfig(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if len(args) > 0 && args[0] == "version" {
		buildinfo.PrintBuildData(os.Stdout)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer app.Close()

	if err := app.Run(ctx, args); err != nil {
		if errors.Is(err, cli.ErrUsage) || errors.Is(err, pflag.ErrHelp) {
			return 2
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0

}
