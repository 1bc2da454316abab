package snapshot

import "sync/atomic"

// Store holds the active snapshot behind a single atomic
// pointer. Readers always see either the old or the new
// snapshot in full, never a half-updated one; snapshots
// themselves are immutable once published.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a Store, optionally seeded with an initial
// snapshot. A nil initial snapshot means no data is loaded yet.
func NewStore(initial *Snapshot) *Store {
	s := &Store{}
	if initial != nil {
		s.current.Store(initial)
	}
	return s
}

// Current returns the active snapshot, or nil when none has
// been loaded.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Swap atomically replaces the active snapshot.
func (s *Store) Swap(snap *Snapshot) {
	s.current.Store(snap)
}
