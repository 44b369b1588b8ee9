// Package migrations embeds the user directory schema, one directory per
// SQL dialect, in golang-migrate file naming.
package migrations

import "embed"

// FS holds postgres/*.sql and sqlite/*.sql.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
