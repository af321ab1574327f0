// Package logging defines the structured, context-aware logger used across
// vaultx. The only implementation wraps log/slog.
//
// Secret payloads, keys, passwords, tokens and TOTP codes must never be passed
// as log attributes.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// key/value pairs:
//
//	log.Info(ctx, "secret created", "user_id", userID, "secret_id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}
