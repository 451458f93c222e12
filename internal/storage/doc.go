// Package storage persists the client's session credentials between runs.
//
// A session is exactly two entries: the opaque bearer token and the
// serialized user record. Both are written together by Save and removed
// together by Clear, so a reader never observes one without the other
// unless the backing data was damaged outside this package.
//
// # Backends
//
//   - FileStore: a 0600 JSON file, replaced atomically on every write
//   - SQLiteStore: a key/value table in a SQLite database (modernc.org/sqlite)
//   - MemoryStore: process-local, for tests and throwaway sessions
//
// Open selects a backend by name from configuration.
package storage
