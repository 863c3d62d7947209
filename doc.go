// Package rewind implements a generic in-memory LRU cache that keeps a
// complete linear history of its own state. Every mutating operation (a Get
// that hits, or any Put) appends an immutable deep-copy snapshot to the
// history, and Rollback restores the cache to any earlier snapshot, discarding
// everything newer. The whole state (capacity, live entries, recency order,
// and the entire history) can be persisted to and restored from a pluggable
// durable store.
//
// Components:
//   - store.Store: durable byte store keyed by locator (file, memory, Redis).
//   - codec.Codec[T]: (de)serializes the State document <-> []byte.
//     JSON by default; CBOR and msgpack available.
//   - internal/wire: magic/version/checksum framing so corrupt blobs are
//     rejected before decoding.
//
// Persistence policy: when a Store is configured, prior state is loaded once
// at construction (fail-open: missing or corrupt state starts empty and never
// errors the constructor), and the full state is saved after every successful
// mutating call (save failures DO propagate to that call).
//
// The cache is built for a single logical owner. No internal locking is
// provided and concurrent mutating calls are undefined behavior. Two caches
// pointed at the same store locator race non-deterministically; that setup is
// unsupported.
package rewind
