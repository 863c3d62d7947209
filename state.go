package rewind

import (
	"fmt"
	"time"
)

// HistoryEntry is one persisted snapshot: cache contents and recency order at
// one instant, plus the wall-clock time the snapshot was taken. UsageOrder
// runs least-recently-used first. Timestamps serialize as RFC 3339 with
// offset under the default JSON codec.
type HistoryEntry[K comparable, V any] struct {
	CacheData  map[K]V   `json:"cacheData" msgpack:"cacheData" cbor:"cacheData"`
	UsageOrder []K       `json:"usageOrder" msgpack:"usageOrder" cbor:"usageOrder"`
	Timestamp  time.Time `json:"timestamp" msgpack:"timestamp" cbor:"timestamp"`
}

// State is the full persisted form of a cache: capacity, live contents,
// recency order, and the entire snapshot history, oldest first. Field names
// are stable; treat them as a wire contract.
type State[K comparable, V any] struct {
	Capacity   int                  `json:"capacity" msgpack:"capacity" cbor:"capacity"`
	CacheData  map[K]V              `json:"cacheData" msgpack:"cacheData" cbor:"cacheData"`
	UsageOrder []K                  `json:"usageOrder" msgpack:"usageOrder" cbor:"usageOrder"`
	History    []HistoryEntry[K, V] `json:"history" msgpack:"history" cbor:"history"`
}

// validate rejects documents that decoded cleanly but describe an impossible
// cache: order and data out of sync, duplicate order keys, or overflow past
// capacity. Runs over the live state and every history entry.
func (s State[K, V]) validate() error {
	if s.Capacity <= 0 {
		return fmt.Errorf("capacity %d is not positive", s.Capacity)
	}
	if err := checkShape(s.CacheData, s.UsageOrder, s.Capacity); err != nil {
		return fmt.Errorf("live state: %w", err)
	}
	for i, h := range s.History {
		if err := checkShape(h.CacheData, h.UsageOrder, s.Capacity); err != nil {
			return fmt.Errorf("history[%d]: %w", i, err)
		}
	}
	return nil
}

func checkShape[K comparable, V any](data map[K]V, order []K, capacity int) error {
	if len(order) != len(data) {
		return fmt.Errorf("order has %d keys, data has %d", len(order), len(data))
	}
	if len(data) > capacity {
		return fmt.Errorf("%d entries exceed capacity %d", len(data), capacity)
	}
	seen := make(map[K]struct{}, len(order))
	for _, k := range order {
		if _, dup := seen[k]; dup {
			return fmt.Errorf("duplicate key %v in order", k)
		}
		if _, ok := data[k]; !ok {
			return fmt.Errorf("order key %v missing from data", k)
		}
		seen[k] = struct{}{}
	}
	return nil
}
