// Package migrations embeds the goose SQL migrations of the example schema.
package migrations

import "embed"

// FS holds the *.sql migration files, applied with pgxdb.PostgresDB.Migrate(ctx, migrations.FS, ".").
//
//go:embed *.sql
var FS embed.FS
