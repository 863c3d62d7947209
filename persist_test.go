package rewind

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	c "github.com/unkn0wn-root/rewind/codec"
	"github.com/unkn0wn-root/rewind/internal/wire"
	st "github.com/unkn0wn-root/rewind/store"
)

// recordingHooks captures hook invocations for assertions.
type recordingHooks struct {
	NopHooks
	loadDiscarded []string // reasons
	saveFailed    int
}

func (h *recordingHooks) LoadDiscarded(_, reason string, _ error) {
	h.loadDiscarded = append(h.loadDiscarded, reason)
}

func (h *recordingHooks) SaveFailed(string, error) { h.saveFailed++ }

// failingStore delegates reads and fails every write.
type failingStore struct {
	*st.Memory
	writeErr error
}

func (s *failingStore) Write(context.Context, string, []byte) error { return s.writeErr }

func newPersistentCache(t *testing.T, capacity int, mem *st.Memory, optsOpt func(*Options[string, int])) Cache[string, int] {
	t.Helper()
	return newTestCache(t, capacity, func(o *Options[string, int]) {
		o.Store = mem
		o.Locator = "test.state"
		if optsOpt != nil {
			optsOpt(o)
		}
	})
}

// decodeStored pulls the blob the cache last wrote and decodes it back into a
// state document.
func decodeStored(t *testing.T, mem *st.Memory) State[string, int] {
	t.Helper()
	raw, err := mem.Read(context.Background(), "test.state")
	if err != nil {
		t.Fatalf("read stored blob: %v", err)
	}
	payload, err := wire.Decode(raw)
	if err != nil {
		t.Fatalf("wire.Decode: %v", err)
	}
	state, err := c.JSON[State[string, int]]{}.Decode(payload)
	if err != nil {
		t.Fatalf("codec decode: %v", err)
	}
	return state
}

// ==============================
// Round-trip
// ==============================

// TestRoundTrip writes through a few mutations and checks the stored document
// equals the live state exactly: capacity, data, order, and the whole history
// including timestamps.
func TestRoundTrip(t *testing.T) {
	mem := st.NewMemory()
	cc := newPersistentCache(t, 3, mem, nil)

	put(t, cc, "A", 1)
	put(t, cc, "B", 2)
	put(t, cc, "C", 3)
	wantHit(t, cc, "A", 1)
	put(t, cc, "D", 4) // evicts B

	got := decodeStored(t, mem)
	want := mustImpl(t, cc).state()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stored state differs from live state (-want +got):\n%s", diff)
	}
	if err := got.validate(); err != nil {
		t.Fatalf("stored state does not validate: %v", err)
	}
}

func TestMsgpackRoundTrip(t *testing.T) {
	mem := st.NewMemory()
	mp := c.Msgpack[State[string, int]]{}
	cc := newPersistentCache(t, 2, mem, func(o *Options[string, int]) { o.Codec = mp })

	put(t, cc, "A", 1)
	put(t, cc, "B", 2)

	raw, err := mem.Read(context.Background(), "test.state")
	if err != nil {
		t.Fatalf("read stored blob: %v", err)
	}
	payload, err := wire.Decode(raw)
	if err != nil {
		t.Fatalf("wire.Decode: %v", err)
	}
	got, err := mp.Decode(payload)
	if err != nil {
		t.Fatalf("msgpack decode: %v", err)
	}
	want := mustImpl(t, cc).state()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("msgpack state differs (-want +got):\n%s", diff)
	}
}

// ==============================
// Restart
// ==============================

// TestRestartRestoresStateAndHistory simulates a process restart by opening a
// second cache on the same store and locator.
func TestRestartRestoresStateAndHistory(t *testing.T) {
	mem := st.NewMemory()
	first := newPersistentCache(t, 3, mem, nil)

	put(t, first, "A", 1)
	put(t, first, "B", 2)
	wantHit(t, first, "A", 1)

	second := newPersistentCache(t, 3, mem, nil)
	wantKeys(t, second, []string{"B", "A"})
	if second.HistoryLen() != first.HistoryLen() {
		t.Fatalf("history not restored: %d vs %d", second.HistoryLen(), first.HistoryLen())
	}

	// rollback reaches through the restart boundary
	if !second.Rollback(2) {
		t.Fatal("Rollback(2) after restart should succeed")
	}
	wantKeys(t, second, []string{"A"})
}

// TestRestartPersistedCapacityWins: the document carries the full prior
// cache, so its capacity overrides the constructor argument on load.
func TestRestartPersistedCapacityWins(t *testing.T) {
	mem := st.NewMemory()
	first := newPersistentCache(t, 2, mem, nil)
	put(t, first, "A", 1)

	second := newPersistentCache(t, 10, mem, nil)
	if second.Cap() != 2 {
		t.Fatalf("Cap after restore = %d, want persisted 2", second.Cap())
	}
}

// ==============================
// Fail-open load
// ==============================

func TestLoadMissingStartsEmptySilently(t *testing.T) {
	mem := st.NewMemory()
	hooks := &recordingHooks{}
	cc := newPersistentCache(t, 3, mem, func(o *Options[string, int]) { o.Hooks = hooks })

	if cc.Len() != 0 || cc.HistoryLen() != 1 {
		t.Fatalf("Len=%d HistoryLen=%d, want 0/1", cc.Len(), cc.HistoryLen())
	}
	if len(hooks.loadDiscarded) != 0 {
		t.Fatalf("missing state should not report a discard, got %v", hooks.loadDiscarded)
	}
}

func TestLoadCorruptStartsEmptyAndSurfaces(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name   string
		blob   []byte
		reason string
	}{
		{"foreign bytes", []byte("not a state blob"), "corrupt"},
		{"bad payload", wire.Encode([]byte("{ not json")), "decode"},
		{"impossible shape", wire.Encode(mustEncodeState(t, State[string, int]{
			Capacity:   1,
			CacheData:  map[string]int{"A": 1, "B": 2},
			UsageOrder: []string{"A", "B"},
		})), "invalid_shape"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mem := st.NewMemory()
			if err := mem.Write(ctx, "test.state", tc.blob); err != nil {
				t.Fatalf("inject blob: %v", err)
			}

			hooks := &recordingHooks{}
			cc := newPersistentCache(t, 3, mem, func(o *Options[string, int]) { o.Hooks = hooks })

			if cc.Len() != 0 || cc.HistoryLen() != 1 {
				t.Fatalf("Len=%d HistoryLen=%d, want empty start", cc.Len(), cc.HistoryLen())
			}
			if len(hooks.loadDiscarded) != 1 || hooks.loadDiscarded[0] != tc.reason {
				t.Fatalf("LoadDiscarded reasons = %v, want [%s]", hooks.loadDiscarded, tc.reason)
			}

			// the cache must stay fully usable
			put(t, cc, "X", 1)
			wantHit(t, cc, "X", 1)
		})
	}
}

func mustEncodeState(t *testing.T, s State[string, int]) []byte {
	t.Helper()
	b, err := c.JSON[State[string, int]]{}.Encode(s)
	if err != nil {
		t.Fatalf("encode state: %v", err)
	}
	return b
}

// ==============================
// Save failures propagate
// ==============================

func TestSaveFailurePropagates(t *testing.T) {
	ctx := context.Background()
	bad := &failingStore{Memory: st.NewMemory(), writeErr: errors.New("disk full")}
	hooks := &recordingHooks{}
	cc := newTestCache(t, 3, func(o *Options[string, int]) {
		o.Store = bad
		o.Locator = "test.state"
		o.Hooks = hooks
	})

	err := cc.Put(ctx, "A", 1)
	var se *SaveError
	if !errors.As(err, &se) {
		t.Fatalf("Put: err=%v, want *SaveError", err)
	}
	if se.Locator != "test.state" {
		t.Fatalf("SaveError.Locator = %q", se.Locator)
	}

	// the in-memory mutation stands even though the save failed
	if cc.Len() != 1 || cc.HistoryLen() != 2 {
		t.Fatalf("Len=%d HistoryLen=%d after failed save, want 1/2", cc.Len(), cc.HistoryLen())
	}

	// a Get hit is a mutating call too: same propagation, value still returned
	v, ok, err := cc.Get(ctx, "A")
	if !ok || v != 1 {
		t.Fatalf("Get: v=%d ok=%v, want 1/true", v, ok)
	}
	if !errors.As(err, &se) {
		t.Fatalf("Get: err=%v, want *SaveError", err)
	}

	if hooks.saveFailed != 2 {
		t.Fatalf("SaveFailed hook fired %d times, want 2", hooks.saveFailed)
	}
}

func TestGetMissDoesNotSave(t *testing.T) {
	bad := &failingStore{Memory: st.NewMemory(), writeErr: errors.New("disk full")}
	cc := newTestCache(t, 3, func(o *Options[string, int]) {
		o.Store = bad
		o.Locator = "test.state"
	})

	if _, ok, err := cc.Get(context.Background(), "absent"); ok || err != nil {
		t.Fatalf("miss should not touch the store: ok=%v err=%v", ok, err)
	}
}
