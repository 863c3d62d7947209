package rewind

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// Persisted state was discarded at load time and the cache starts empty.
	// reason ∈ {"io", "corrupt", "decode", "invalid_shape"}
	LoadDiscarded(locator, reason string, err error)

	// A snapshot was appended after a mutating call; n is the new history length.
	SnapshotAppended(n int)

	// Rollback(steps) succeeded; n is the history length after truncation.
	RollbackApplied(steps, n int)

	// The least-recently-used entry for key was evicted to make room.
	Evicted(key any)

	// A store write failed during a mutating call.
	// The same failure also propagates to the caller as *SaveError.
	SaveFailed(locator string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) LoadDiscarded(string, string, error) {}
func (NopHooks) SnapshotAppended(int)                {}
func (NopHooks) RollbackApplied(int, int)            {}
func (NopHooks) Evicted(any)                         {}
func (NopHooks) SaveFailed(string, error)            {}
