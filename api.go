package rewind

import (
	"context"

	c "github.com/unkn0wn-root/rewind/codec"
	st "github.com/unkn0wn-root/rewind/store"
)

// Cache is the high-level API: an LRU keyed store whose every mutation is
// recorded as an immutable snapshot, rewindable via Rollback.
// K is the caller's key type, V the value type. Serialization of the state
// document is handled by a pluggable Codec.
type Cache[K comparable, V any] interface {
	// Get returns the value for key and promotes it to most-recently-used.
	// A miss returns (zero, false, nil) and has no side effects: no snapshot,
	// no save. On a hit the post-promotion state is snapshotted and, when
	// persistence is enabled, saved; a save failure is returned alongside the
	// value (ok stays true - the in-memory state did change).
	Get(ctx context.Context, key K) (v V, ok bool, err error)

	// Put inserts or overwrites key and promotes it to most-recently-used.
	// Inserting a new key into a full cache first evicts the
	// least-recently-used entry. The resulting state is snapshotted and, when
	// persistence is enabled, saved; a save failure comes back as *SaveError.
	Put(ctx context.Context, key K, value V) error

	// Rollback restores the state as of steps completed mutations ago;
	// steps == 0 is a successful no-op. It reports false, with no side
	// effects, when steps is negative or reaches past the oldest snapshot.
	// On success the restored point becomes the latest: every newer snapshot
	// is discarded and there is no redo. Rollback appends no snapshot of its
	// own and never errors - invalid targets are signalled purely by the
	// boolean.
	Rollback(steps int) bool

	// Pure reads, no side effects.
	Len() int          // resident entry count
	Cap() int          // maximum resident entry count
	HistoryLen() int   // number of retained snapshots
	Keys() []K         // recency order copy, least-recently-used first
	Items() map[K]V    // copy of the live entries

	Close(ctx context.Context) error
}

// Options tune the cache. Only Capacity is required; persistence is enabled
// by providing a Store.
type Options[K comparable, V any] struct {
	// Required. Maximum resident entry count; must be positive.
	Capacity int

	// Durable store for whole-state persistence. nil disables persistence
	// entirely: no load at construction, no saves on mutation.
	Store st.Store
	// Store key the state document lives under. Locator selection belongs to
	// the caller; "rewind.state" is used when empty.
	Locator string

	Codec  c.Codec[State[K, V]] // nil => codec.JSON
	Logger Logger               // if nil, NopLogger is used
	Hooks  Hooks                // if nil, NopHooks is used
}

// New constructs a cache. When a Store is configured, prior persisted state is
// loaded fail-open: a missing blob starts the cache empty silently, and a
// corrupt or unreadable one starts it empty with the failure logged and
// reported via Hooks.LoadDiscarded - load problems never abort construction.
// ErrInvalidCapacity (Capacity <= 0) is the only construction failure.
func New[K comparable, V any](opts Options[K, V]) (Cache[K, V], error) {
	return newCache[K, V](opts)
}
