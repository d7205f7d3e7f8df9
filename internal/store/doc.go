// Package store persists which messages have been processed and when the
// mailbox was last polled.
//
// Four backends share the Store interface:
//
//   - memory: process-local maps, lost on restart
//   - file:   a JSON snapshot rewritten atomically after every change
//   - sqlite: a pure-Go SQLite database (modernc.org/sqlite)
//   - valkey: a Valkey or Redis server, for several agents sharing state
//
// Use Open to pick one by name.
package store
