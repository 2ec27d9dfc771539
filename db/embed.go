// Package db provides embedded database schema and seed files.
package db

import _ "embed"

// Schema contains the DDL statements for the persisted-state table.
//
//go:embed migrations/001_schema.sql
var Schema string
