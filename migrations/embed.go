// Package migrations embeds the PostgreSQL schema migrations so the server
// and migrate binaries carry them without a files directory.
package migrations

import "embed"

// FS holds every *.sql migration in this directory
//
//go:embed *.sql
var FS embed.FS
