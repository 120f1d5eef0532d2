// Package credstore persists one OAuth grant per user.
//
// A Store saves and loads Grants keyed by user identifier. Loading a user that
// was never saved is not an error: Load reports ok == false. Saving replaces the
// previous grant for that user.
//
// Three backends are available:
//   - FileStore: one JSON file per user, written atomically (temp file + rename)
//   - MemoryStore: in-process map, for tests and ephemeral runs
//   - ValkeyStore: one key per user in a Valkey/Redis server
//
// Any backend can seal the stored bytes with AES-256-GCM through a Sealer.
package credstore
