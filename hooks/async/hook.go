// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/rewind"
//	"github.com/unkn0wn-root/rewind/hooks/async"
//	"github.com/unkn0wn-root/rewind/sloghooks"
//	"github.com/unkn0wn-root/rewind/store"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    SnapshotEvery: 10, // sample logs: ~every 10th snapshot append
//	    EvictEvery:    1,  // log every eviction
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	cache, _ := rewind.New[string, int](rewind.Options[string, int]{
//	    Capacity: 128,
//	    Store:    store.NewFile("/var/lib/myapp"),
//	    Locator:  "sessions.state",
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/rewind"
)

type Hooks struct {
	inner rewind.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ rewind.Hooks = (*Hooks)(nil)

func New(inner rewind.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) LoadDiscarded(locator, reason string, err error) {
	h.try(func() { h.inner.LoadDiscarded(locator, reason, err) })
}

func (h *Hooks) SnapshotAppended(n int) {
	h.try(func() { h.inner.SnapshotAppended(n) })
}

func (h *Hooks) RollbackApplied(steps, n int) {
	h.try(func() { h.inner.RollbackApplied(steps, n) })
}

func (h *Hooks) Evicted(key any) {
	h.try(func() { h.inner.Evicted(key) })
}

func (h *Hooks) SaveFailed(locator string, err error) {
	h.try(func() { h.inner.SaveFailed(locator, err) })
}
