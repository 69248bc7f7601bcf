// Package migrations embeds SQL migrations applied on startup when the
// Postgres backend is selected.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
