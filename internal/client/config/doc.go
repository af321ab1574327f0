// Package config loads runtime configuration for vaultctl.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. VAULTCTL_SERVER environment variable.
//  4. Global command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the vaultx gRPC endpoint
//	-t int      per-request timeout (seconds)
//	-s string   path of the local state file
//
// # JSON schema
//
// Durations accept either strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s",
//	  "state_path": "vaultctl.db"
//	}
package config
