// Package cli implements vaultctl, the command-line client for a vaultx
// server.
//
// Each invocation runs one command (signup, login, list, get, add, delete,
// backup, keygen...) against the gRPC API; without a command an interactive
// prompt accepts the same commands line by line. The session token is kept
// in the local state file between invocations.
package cli
