// Package store defines interfaces for page, task and blob persistence.
// These interfaces keep the admission logic independent of the SQLite
// database and filesystem that back them in production.
package store
