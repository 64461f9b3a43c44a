// Package migrations embeds the goose SQL migrations for the users and
// articles tables.
package migrations

import "embed"

//go:embed sql/*.sql
var FS embed.FS

// Dir is the directory inside FS holding the migration files
const Dir = "sql"
