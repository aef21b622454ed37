package config

import (
	"os"
	"time"
)

const tokenEnv = "PLATELEDGER_TOKEN"

// Config holds runtime settings for the CLI.
type Config struct {
	ServerEndpointAddr string
	AccessToken        string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig builds a Config from defaults, the optional JSON file and the
// global flags at the head of args. It returns the remaining arguments,
// starting with the command name.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	g, err := parseFlags(args)
	if err != nil {
		return nil, nil, err
	}

	if g.configFile != "" {
		if err := parseJson(cfg, g.configFile); err != nil {
			return nil, nil, err
		}
	}

	g.apply(cfg)

	if cfg.AccessToken == "" {
		cfg.AccessToken = os.Getenv(tokenEnv)
	}

	return cfg, g.rest, nil
}
