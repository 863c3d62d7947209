package rewind

import (
	"maps"
	"slices"
	"time"
)

// snapshot is one immutable record of cache contents and recency order.
// Exclusively owned by the history that holds it; never aliased with live
// state.
type snapshot[K comparable, V any] struct {
	data  map[K]V
	order []K // least-recently-used first
	at    time.Time
}

// history is the append-only snapshot sequence, oldest first. It grows by one
// entry per mutating cache operation and shrinks only via truncateAfter during
// rollback.
type history[K comparable, V any] struct {
	entries []snapshot[K, V]
}

// append stores independent deep copies of data and order.
func (h *history[K, V]) append(data map[K]V, order []K, at time.Time) {
	h.entries = append(h.entries, snapshot[K, V]{
		data:  copyMap(data),
		order: slices.Clone(order),
		at:    at,
	})
}

func (h *history[K, V]) len() int { return len(h.entries) }

// target maps "steps back from the latest" to an index; steps=0 is the latest.
// The caller validates bounds.
func (h *history[K, V]) target(steps int) int { return len(h.entries) - 1 - steps }

// truncateAfter drops every entry with position > i. No-op when nothing is
// newer than i.
func (h *history[K, V]) truncateAfter(i int) {
	if i+1 >= len(h.entries) {
		return
	}
	// zero the dropped tail so the backing array does not pin the snapshots
	tail := h.entries[i+1:]
	for j := range tail {
		tail[j] = snapshot[K, V]{}
	}
	h.entries = h.entries[:i+1]
}

// copyMap is like maps.Clone but never returns nil.
func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	maps.Copy(out, m)
	return out
}
