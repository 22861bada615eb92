// Package migrations holds the SQL schema of the modules shipped with
// Sitegear, applied with db.Migrate.
package migrations

import "embed"

// FS contains the goose migrations at its root.
//
//go:embed *.sql
var FS embed.FS
