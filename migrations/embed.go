// Package migrations embeds the versioned postgres schema migrations.
package migrations

import "embed"

// FS holds every *.sql migration in this directory
//
//go:embed *.sql
var FS embed.FS
