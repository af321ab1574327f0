package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/vaultx/internal/flagx"
	"github.com/dmitrijs2005/vaultx/internal/timex"
)

// JsonConfig mirrors Config for the JSON file. Durations accept "15m" style
// strings or integer nanoseconds. Absent keys leave the current value alone.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           string         `json:"database_dsn"`
	JWTSecret             string         `json:"jwt_secret"`
	MasterKey             string         `json:"master_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	TOTPIssuer            string         `json:"totp_issuer"`
	BcryptCost            int            `json:"bcrypt_cost"`
	RateLimitRequests     int            `json:"rate_limit_requests"`
	RateLimitWindow       timex.Duration `json:"rate_limit_window"`
	LogLevel              string         `json:"log_level"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	BackupLinkTTL         timex.Duration `json:"backup_link_ttl"`
}

// parseJson overlays the file named by -c / -config, if any.
func parseJson(config *Config, args []string) error {
	path := flagx.JsonConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.JWTSecret, c.JWTSecret)
	setString(&config.MasterKey, c.MasterKey)
	setDuration(&config.TokenValidityDuration, c.TokenValidityDuration)
	setString(&config.TOTPIssuer, c.TOTPIssuer)
	setInt(&config.BcryptCost, c.BcryptCost)
	setInt(&config.RateLimitRequests, c.RateLimitRequests)
	setDuration(&config.RateLimitWindow, c.RateLimitWindow)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.BackupLinkTTL, c.BackupLinkTTL)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
