package config

import (
	"os"
	"time"
)

// Config holds runtime settings for vaultctl.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	StatePath          string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.StatePath = "vaultctl.db"
}

// LoadConfig builds a Config from defaults, JSON, environment and the global
// flags in args. It returns the remaining arguments: the command and its own
// arguments.
func LoadConfig(args []string) (*Config, []string, error) {
	return load(args, os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, nil, err
	}

	if v, ok := lookup("VAULTCTL_SERVER"); ok && v != "" {
		cfg.ServerEndpointAddr = v
	}

	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}
