// Package migrations holds the PostgreSQL schema.
package migrations

import _ "embed"

//go:embed 001_create_tasks.up.sql
var Up string

//go:embed 001_create_tasks.down.sql
var Down string
