package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/vaultx/internal/flagx"
)

var serverFlags = []string{"-a", "-r", "-d", "-s", "-k", "-t", "-l", "-u", "-p", "-b", "-g", "-e"}

// parseFlags overlays command-line flags:
//
//	-a string   HTTP bind address (e.g. ":5000")
//	-r string   gRPC bind address (e.g. ":50051")
//	-d string   database DSN, or "memory"
//	-s string   JWT HMAC secret
//	-k string   master key, 64 hex chars
//	-t int      token validity, minutes
//	-l string   log level
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket, empty disables backups
//	-g string   S3 region
//	-e string   S3 endpoint (e.g. "http://127.0.0.1:9000")
//
// Other arguments, -c included, are filtered out with flagx.FilterArgs first.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "r", config.EndpointAddrGRPC, "gRPC address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "JWT secret")
	fs.StringVar(&config.MasterKey, "k", config.MasterKey, "master key (hex)")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
		}
	})
	return nil
}
