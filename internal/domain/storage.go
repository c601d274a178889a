package domain

// SyncProgress reports progress during a full catalog sync.
// One update is sent per category after its fetch attempt.
type SyncProgress struct {
	CategoryID   string
	CategoryName string
	Loaded       int   // Categories attempted so far
	Total        int   // Categories that passed the blocklist
	Movies       int   // Movies fetched for this category
	Err          error // Non-nil if this category was skipped
}

// Skipped reports whether the category's fetch failed
func (p SyncProgress) Skipped() bool { return p.Err != nil }

// SyncObserver receives progress updates during sync operations.
type SyncObserver interface {
	OnProgress(progress SyncProgress)
}

// NoOpObserver discards progress updates (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnProgress(SyncProgress) {}

// ObserverFunc adapts a plain function to SyncObserver.
type ObserverFunc func(SyncProgress)

func (f ObserverFunc) OnProgress(p SyncProgress) { f(p) }
