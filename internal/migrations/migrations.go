// Package migrations carries the schema migrations, embedded so the binary
// can apply them from any working directory.
package migrations

import "embed"

//go:embed *.sql
var Embed embed.FS
