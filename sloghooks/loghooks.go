package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/rewind"
)

type Options struct {
	// Sampling to avoid floods on hot paths; 0/1 = log all.
	// SnapshotAppended fires once per mutating call, so sample it in any
	// cache that sees real traffic.
	SnapshotEvery uint64
	EvictEvery    uint64
}

// Hooks logs cache events through slog. Load discards and save failures are
// always logged; snapshot appends and evictions can be sampled.
type Hooks struct {
	l    *slog.Logger
	opts Options

	snapshotCtr atomic.Uint64
	evictCtr    atomic.Uint64
}

var _ rewind.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) LoadDiscarded(locator, reason string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("rewind.load_discarded",
		"locator", locator,
		"reason", reason,
		"err", err)
}

func (h *Hooks) SnapshotAppended(n int) {
	if h.l == nil || !sample(h.opts.SnapshotEvery, &h.snapshotCtr) {
		return
	}
	h.l.Debug("rewind.snapshot_appended",
		"history_len", n)
}

func (h *Hooks) RollbackApplied(steps, n int) {
	if h.l == nil {
		return
	}
	h.l.Info("rewind.rollback_applied",
		"steps", steps,
		"history_len", n)
}

func (h *Hooks) Evicted(key any) {
	if h.l == nil || !sample(h.opts.EvictEvery, &h.evictCtr) {
		return
	}
	h.l.Debug("rewind.evicted",
		"key", key)
}

func (h *Hooks) SaveFailed(locator string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("rewind.save_failed",
		"locator", locator,
		"err", err)
}
