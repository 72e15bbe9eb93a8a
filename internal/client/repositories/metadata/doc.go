// Package metadata provides the durable key/value storage shared by the
// Session Store and the API client.
//
// Backends
//
//   - SQLiteRepository: default; a single "metadata" table managed by goose
//     migrations (see Open).
//   - KeyringRepository: OS credential manager via go-keyring.
//   - RedisRepository: shared store for several client processes.
//   - MemoryRepository: process-local, used for ephemeral sessions and tests.
//   - SealedRepository: wraps any backend and encrypts values at rest.
//
// All backends satisfy Repository. SQLite and memory also implement Batcher
// so the credential pair is written and purged atomically.
package metadata
