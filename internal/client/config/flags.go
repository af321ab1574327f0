package config

import (
	"flag"
	"io"
	"time"
)

// parseFlags reads the global flags that precede the command name and
// returns everything after them.
func parseFlags(cfg *Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet("vaultctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var configPath string
	fs.StringVar(&configPath, "c", "", "path to config file")
	fs.StringVar(&configPath, "config", "", "path to config file")
	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the vaultx gRPC endpoint")
	fs.StringVar(&cfg.StatePath, "s", cfg.StatePath, "path of the local state file")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})

	return fs.Args(), nil
}
