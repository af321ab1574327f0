// Package config handles configuration for the server component:
// defaults, then an optional JSON file, then environment variables and finally
// command-line flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/vaultx/internal/common"
)

// MemoryDSN selects the in-memory store instead of PostgreSQL.
const MemoryDSN = "memory"

// Config holds runtime settings for the vaultx server.
//
// MasterKey (64 hex chars) and JWTSecret have no defaults. Startup fails
// without them.
type Config struct {
	EndpointAddrHTTP string
	EndpointAddrGRPC string
	DatabaseDSN      string

	JWTSecret             string
	MasterKey             string
	TokenValidityDuration time.Duration
	TOTPIssuer            string
	BcryptCost            int

	RateLimitRequests int
	RateLimitWindow   time.Duration

	LogLevel string

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	BackupLinkTTL  time.Duration
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":5000"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = MemoryDSN
	c.TokenValidityDuration = time.Hour
	c.TOTPIssuer = "VaultX"
	c.BcryptCost = 10
	c.RateLimitRequests = 100
	c.RateLimitWindow = 15 * time.Minute
	c.LogLevel = "info"
	c.S3Region = "us-east-1"
	c.BackupLinkTTL = 15 * time.Minute
}

// Validate checks the settings that have no usable default. Format checks of
// the key material happen where it is consumed.
func (c *Config) Validate() error {
	if c.MasterKey == "" {
		return fmt.Errorf("%w: MASTER_KEY is not set", common.ErrConfiguration)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is not set", common.ErrConfiguration)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("%w: database DSN is empty", common.ErrConfiguration)
	}
	if c.TokenValidityDuration <= 0 {
		return fmt.Errorf("%w: token validity must be positive", common.ErrConfiguration)
	}
	return nil
}

// UseMemoryStore reports whether the in-memory store was selected.
func (c *Config) UseMemoryStore() bool {
	return c.DatabaseDSN == MemoryDSN
}

// LoadConfig builds a Config from the process arguments and environment.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfiguration, err)
	}
	parseEnv(cfg, lookup)
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
