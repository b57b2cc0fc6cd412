// Package migrations embeds the schema so the binary can initialise a fresh database on its own.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
