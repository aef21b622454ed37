package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/client/client"
	"github.com/dmitrijs2005/plateledger/internal/client/config"
)

var ErrUsage = errors.New("usage")

type App struct {
	client  client.Client
	timeout time.Duration
	out     io.Writer
	stdin   io.Reader
}

func NewApp(c *config.Config) (*App, error) {

	apiClient, err := client.NewLedgerClient(c.ServerEndpointAddr, c.AccessToken)
	if err != nil {
		return nil, err
	}

	return &App{client: apiClient, timeout: c.RequestTimeout, out: os.Stdout, stdin: os.Stdin}, nil
}

func (a *App) Close() error {
	return a.client.Close()
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUsage
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "ping":
		return a.ping(ctx)
	case "sighting":
		return a.sighting(ctx, rest)
	case "roster":
		return a.roster(ctx, rest)
	case "archive":
		return a.archive(ctx, rest)
	case "report":
		return a.report(ctx, rest)
	case "history":
		return a.history(ctx, rest)
	case "help":
		a.usage()
		return nil
	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
		a.usage()
		return ErrUsage
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Available commands: ping, sighting, roster, archive, report, history")
}
