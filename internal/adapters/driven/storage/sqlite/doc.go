// Package sqlite persists rule table snapshots in SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Each snapshot is a row in rule_tables holding the header
// row as JSON, and its rules are rows in rules ordered by position.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.wordcheck/data/rules.db
package sqlite
