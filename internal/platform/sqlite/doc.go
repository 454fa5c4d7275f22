// Package sqlite implements the relational half of the page queue storage on
// top of SQLite.
//
// A Storage owns a single lazily opened connection to one database file and
// runs named statements against it. Each statement is given a short name that
// appears in every error it produces, which keeps failures traceable without
// logging the SQL itself.
//
// The schema is managed with goose migrations embedded in the binary, so
// CreateTables and DropTables work against any database file without access
// to the source tree.
//
// PageStore and TaskStore implement the store.PageStore and store.TaskStore
// interfaces. Every operation opens its own Storage and closes it when done,
// and relies on SQLite's busy timeout to serialize writers across processes.
package sqlite
