package rewind

import (
	"container/list"
	"context"
	"errors"
	"time"

	c "github.com/unkn0wn-root/rewind/codec"
	"github.com/unkn0wn-root/rewind/internal/wire"
	st "github.com/unkn0wn-root/rewind/store"
)

const defaultLocator = "rewind.state"

type cache[K comparable, V any] struct {
	cap   int
	data  map[K]V
	order *list.List          // element values are K; front = least-recently-used
	index map[K]*list.Element // key -> its node in order

	hist history[K, V]

	store   st.Store
	locator string
	codec   c.Codec[State[K, V]]
	log     Logger
	hooks   Hooks

	now func() time.Time
}

func newCache[K comparable, V any](opts Options[K, V]) (*cache[K, V], error) {
	if opts.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	cc := &cache[K, V]{
		cap:   opts.Capacity,
		data:  make(map[K]V, opts.Capacity),
		order: list.New(),
		index: make(map[K]*list.Element, opts.Capacity),
		store: opts.Store,
		now:   time.Now,
	}

	// defaults
	cc.log = coalesce[Logger](opts.Logger, NopLogger{})
	cc.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	cc.locator = coalesce(opts.Locator, defaultLocator)
	cc.codec = coalesce[c.Codec[State[K, V]]](opts.Codec, c.JSON[State[K, V]]{})

	if cc.store != nil {
		ctx := context.Background()
		if err := cc.store.EnsureContainer(ctx, cc.locator); err != nil {
			cc.log.Warn("ensure container failed", Fields{"locator": cc.locator, "err": err})
		}
		cc.load(ctx)
	}
	if cc.hist.len() == 0 {
		// history is never empty: record the starting state
		cc.hist.append(cc.data, cc.keys(), cc.now())
	}
	return cc, nil
}

func (cc *cache[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V
	el, ok := cc.index[key]
	if !ok {
		return zero, false, nil
	}
	cc.order.MoveToBack(el)
	cc.snapshot()
	return cc.data[key], true, cc.save(ctx)
}

func (cc *cache[K, V]) Put(ctx context.Context, key K, value V) error {
	if el, ok := cc.index[key]; ok {
		cc.data[key] = value
		cc.order.MoveToBack(el)
	} else {
		if len(cc.data) == cc.cap {
			cc.evict()
		}
		cc.data[key] = value
		cc.index[key] = cc.order.PushBack(key)
	}
	cc.snapshot()
	return cc.save(ctx)
}

func (cc *cache[K, V]) Rollback(steps int) bool {
	if steps < 0 || steps >= cc.hist.len() {
		return false
	}
	if steps == 0 {
		return true
	}
	i := cc.hist.target(steps)
	snap := cc.hist.entries[i]
	cc.data = copyMap(snap.data)
	cc.rebuildOrder(snap.order)
	cc.hist.truncateAfter(i)
	cc.log.Debug("rolled back", Fields{"steps": steps, "history": cc.hist.len()})
	cc.hooks.RollbackApplied(steps, cc.hist.len())
	return true
}

func (cc *cache[K, V]) Len() int        { return len(cc.data) }
func (cc *cache[K, V]) Cap() int        { return cc.cap }
func (cc *cache[K, V]) HistoryLen() int { return cc.hist.len() }

// Keys returns the recency order, least-recently-used first.
func (cc *cache[K, V]) Keys() []K { return cc.keys() }

// Items returns a copy of the live entries.
func (cc *cache[K, V]) Items() map[K]V { return copyMap(cc.data) }

func (cc *cache[K, V]) Close(ctx context.Context) error {
	if cc.store != nil {
		return cc.store.Close(ctx)
	}
	return nil
}

// evict drops the least-recently-used entry (the order front).
func (cc *cache[K, V]) evict() {
	front := cc.order.Front()
	if front == nil {
		return
	}
	k := front.Value.(K)
	cc.order.Remove(front)
	delete(cc.index, k)
	delete(cc.data, k)
	cc.log.Debug("evicted least-recently-used entry", Fields{"key": k})
	cc.hooks.Evicted(k)
}

// snapshot records the current state at the end of the history.
func (cc *cache[K, V]) snapshot() {
	cc.hist.append(cc.data, cc.keys(), cc.now())
	cc.hooks.SnapshotAppended(cc.hist.len())
}

func (cc *cache[K, V]) keys() []K {
	out := make([]K, 0, cc.order.Len())
	for el := cc.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(K))
	}
	return out
}

func (cc *cache[K, V]) rebuildOrder(order []K) {
	cc.order = list.New()
	cc.index = make(map[K]*list.Element, len(order))
	for _, k := range order {
		cc.index[k] = cc.order.PushBack(k)
	}
}

// load restores prior persisted state. Failures never propagate: a missing
// blob starts the cache empty silently; anything else discards the blob and
// starts empty, surfaced via log + hooks since it may indicate data loss.
func (cc *cache[K, V]) load(ctx context.Context) {
	raw, err := cc.store.Read(ctx, cc.locator)
	if err != nil {
		if errors.Is(err, st.ErrNotFound) {
			cc.log.Debug("no persisted state; starting empty", Fields{"locator": cc.locator})
			return
		}
		cc.log.Warn("persisted state unreadable; starting empty", Fields{"locator": cc.locator, "err": err})
		cc.hooks.LoadDiscarded(cc.locator, "io", err)
		return
	}

	payload, err := wire.Decode(raw)
	if err != nil {
		cc.log.Error("persisted state corrupt; starting empty", Fields{"locator": cc.locator, "err": err})
		cc.hooks.LoadDiscarded(cc.locator, "corrupt", err)
		return
	}

	state, err := cc.codec.Decode(payload)
	if err != nil {
		cc.log.Error("persisted state undecodable; starting empty", Fields{"locator": cc.locator, "err": err})
		cc.hooks.LoadDiscarded(cc.locator, "decode", err)
		return
	}

	if err := state.validate(); err != nil {
		cc.log.Error("persisted state inconsistent; starting empty", Fields{"locator": cc.locator, "err": err})
		cc.hooks.LoadDiscarded(cc.locator, "invalid_shape", err)
		return
	}

	cc.restore(state)
	cc.log.Info("persisted state restored", Fields{
		"locator": cc.locator,
		"entries": len(cc.data),
		"history": cc.hist.len(),
	})
}

// restore replaces live state and history with the decoded document. The
// persisted capacity wins over Options.Capacity: the document is the complete
// prior cache, and resizing it on load could invalidate its own history.
func (cc *cache[K, V]) restore(s State[K, V]) {
	cc.cap = s.Capacity
	cc.data = copyMap(s.CacheData)
	cc.rebuildOrder(s.UsageOrder)
	cc.hist = history[K, V]{entries: make([]snapshot[K, V], 0, len(s.History))}
	for _, h := range s.History {
		cc.hist.append(h.CacheData, h.UsageOrder, h.Timestamp)
	}
}

// save writes the whole state, history included, under the locator. Unlike
// load failures, save failures propagate: a silent one would mask data loss.
func (cc *cache[K, V]) save(ctx context.Context) error {
	if cc.store == nil {
		return nil
	}
	payload, err := cc.codec.Encode(cc.state())
	if err != nil {
		return &SaveError{Locator: cc.locator, Err: err}
	}
	if err := cc.store.Write(ctx, cc.locator, wire.Encode(payload)); err != nil {
		cc.log.Error("state save failed", Fields{"locator": cc.locator, "err": err})
		cc.hooks.SaveFailed(cc.locator, err)
		return &SaveError{Locator: cc.locator, Err: err}
	}
	return nil
}

// state assembles the persisted document from live state and history.
// Everything is copied; the document shares nothing with the cache.
func (cc *cache[K, V]) state() State[K, V] {
	hist := make([]HistoryEntry[K, V], cc.hist.len())
	for i, s := range cc.hist.entries {
		hist[i] = HistoryEntry[K, V]{
			CacheData:  copyMap(s.data),
			UsageOrder: append([]K(nil), s.order...),
			Timestamp:  s.at,
		}
	}
	return State[K, V]{
		Capacity:   cc.cap,
		CacheData:  copyMap(cc.data),
		UsageOrder: cc.keys(),
		History:    hist,
	}
}
