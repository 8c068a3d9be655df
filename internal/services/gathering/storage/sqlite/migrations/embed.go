package migrations

import "embed"

// FS contains embedded SQLite migrations for gathering storage.
//
//go:embed *.sql
var FS embed.FS
