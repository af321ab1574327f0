package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/vaultx/internal/flagx"
	"github.com/dmitrijs2005/vaultx/internal/timex"
)

// JsonConfig is the on-disk shape of the config file.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	StatePath          string         `json:"state_path"`
}

// parseJson overlays cfg with the non-empty values of the file named by
// -c/-config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.JsonConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.StatePath != "" {
		cfg.StatePath = jc.StatePath
	}
	return nil
}
