// Package client is the vaultctl side of the gRPC API.
//
// GRPCClient wraps the JSON-codec service client, attaches the session token
// to every call through a unary interceptor and maps gRPC status codes onto
// the sentinel errors below, so callers can match them with errors.Is.
//
// InitState opens the local SQLite state file that keeps the session token
// between invocations and applies its embedded goose migrations.
package client
