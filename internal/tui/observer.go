package tui

import (
	"slices"

	"github.com/mmcdole/reel/internal/domain"
)

// SyncStatus is the running total of a sync as seen by the progress view
type SyncStatus struct {
	Loaded  int
	Total   int
	Current string
	Movies  int
	Skipped []string
}

// ChannelObserver folds per-category updates into a SyncStatus and hands the
// latest one to a channel for Bubble Tea. It never blocks the sync: if the
// view has not caught up, the stale status is replaced.
// OnProgress must be called from a single goroutine.
type ChannelObserver struct {
	ch     chan SyncStatus
	status SyncStatus
}

// NewChannelObserver creates a channel-based observer. ch should have capacity 1.
func NewChannelObserver(ch chan SyncStatus) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnProgress records one category result and publishes the new total
func (o *ChannelObserver) OnProgress(p domain.SyncProgress) {
	o.status.Loaded = p.Loaded
	o.status.Total = p.Total
	o.status.Current = p.CategoryName
	o.status.Movies += p.Movies
	if p.Skipped() {
		o.status.Skipped = append(o.status.Skipped, p.CategoryName)
	}

	snapshot := o.status
	snapshot.Skipped = slices.Clone(o.status.Skipped)
	for {
		select {
		case o.ch <- snapshot:
			return
		default:
		}
		// Drop whatever the view has not read yet
		select {
		case <-o.ch:
		default:
		}
	}
}

// Status returns the latest running total
func (o *ChannelObserver) Status() SyncStatus { return o.status }
