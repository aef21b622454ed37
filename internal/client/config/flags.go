package config

import (
	"time"

	"github.com/spf13/pflag"
)

type globalFlags struct {
	fs         *pflag.FlagSet
	configFile string
	addr       string
	token      string
	timeout    time.Duration
	rest       []string
}

// parseFlags reads the global flags. Parsing stops at the first
// non-flag argument, which is the command.
func parseFlags(args []string) (*globalFlags, error) {
	g := &globalFlags{}

	fs := pflag.NewFlagSet("plateledger-cli", pflag.ContinueOnError)
	fs.SetInterspersed(false)

	fs.StringVarP(&g.configFile, "config", "c", "", "path to JSON config file")
	fs.StringVarP(&g.addr, "addr", "a", "", "address and port to access server")
	fs.StringVarP(&g.token, "token", "k", "", "access token")
	fs.DurationVarP(&g.timeout, "timeout", "t", 0, "per-call timeout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	g.fs = fs
	g.rest = fs.Args()
	return g, nil
}

// apply copies explicitly given flags onto cfg.
func (g *globalFlags) apply(cfg *Config) {
	if g.fs.Changed("addr") {
		cfg.ServerEndpointAddr = g.addr
	}
	if g.fs.Changed("token") {
		cfg.AccessToken = g.token
	}
	if g.fs.Changed("timeout") {
		cfg.RequestTimeout = g.timeout
	}
}
