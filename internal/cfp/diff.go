package cfp

import "time"

// Snapshot is the listing as seen on a previous run
type Snapshot struct {
	Events    map[string]*Event `json:"events"` // keyed by ID
	Order     []string          `json:"order"`  // IDs in listing order
	UpdatedAt string            `json:"updated_at"`
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Events: make(map[string]*Event),
		Order:  make([]string, 0),
	}
}

// CreateSnapshot creates a snapshot from a listing, preserving its order
func CreateSnapshot(events []*Event, updatedAt string) *Snapshot {
	snap := NewSnapshot()
	snap.UpdatedAt = updatedAt

	for _, evt := range events {
		id := ID(evt)
		if _, dup := snap.Events[id]; !dup {
			snap.Order = append(snap.Order, id)
		}
		snap.Events[id] = evt
	}

	return snap
}

// Ordered returns the snapshot's events in listing order
func (s *Snapshot) Ordered() []*Event {
	out := make([]*Event, 0, len(s.Order))
	for _, id := range s.Order {
		if evt, ok := s.Events[id]; ok {
			out = append(out, evt)
		}
	}
	return out
}

// DiffResult contains the results of comparing a listing with a snapshot
type DiffResult struct {
	NewEvents     []*Event
	RemovedEvents []*Event
	CheckedAt     time.Time
}

// Diff compares the current listing against a previous snapshot.
// New events keep their listing order; removed events keep the order of
// the previous snapshot.
func Diff(previous *Snapshot, current []*Event) *DiffResult {
	result := &DiffResult{
		NewEvents:     make([]*Event, 0),
		RemovedEvents: make([]*Event, 0),
		CheckedAt:     time.Now().UTC(),
	}

	if previous == nil {
		previous = NewSnapshot()
	}

	seen := make(map[string]bool, len(current))
	for _, evt := range current {
		id := ID(evt)
		if seen[id] {
			continue
		}
		seen[id] = true

		if _, exists := previous.Events[id]; !exists {
			result.NewEvents = append(result.NewEvents, evt)
		}
	}

	for _, evt := range previous.Ordered() {
		if !seen[ID(evt)] {
			result.RemovedEvents = append(result.RemovedEvents, evt)
		}
	}

	return result
}
