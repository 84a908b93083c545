// Package persistence provides the local store for job collections and the connection setting.
// Values are kept as whole snapshots in a SQLite key-value table (WAL mode), every write
// replaces the previous value for its key.
package persistence
