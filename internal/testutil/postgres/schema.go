package postgres

import (
	_ "embed"
)

//go:embed schema.sql
var rawSchema string

// Schema returns the schema SQL for test database initialization.
func Schema() string {
	return rawSchema
}
