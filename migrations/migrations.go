// Package migrations embeds the SQL schema migrations for the syncup service.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
