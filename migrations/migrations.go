// Package migrations embeds the SQL schema so binaries can apply it without
// shipping the files alongside
package migrations

import _ "embed"

//go:embed 000001_init_schema.up.sql
var InitSchema string
