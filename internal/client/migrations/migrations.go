// Package migrations embeds the goose migrations for the vaultctl state file.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
