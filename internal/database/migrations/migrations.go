// Package migrations embeds the game_types schema for each SQL backend.
package migrations

import _ "embed"

//go:embed postgres.sql
var Postgres string

//go:embed sqlite.sql
var SQLite string
