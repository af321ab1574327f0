// Package metadata is the key/value table in the vaultctl state file. It holds
// the session token and the server address it was issued by.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyAccessToken = "access_token"
	KeyServer      = "server"
	KeyUserEmail   = "user_email"
)

type Repository interface {
	// Get reports ok=false when key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
