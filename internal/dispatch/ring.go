package dispatch

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RingEntry is one recently seen commerce event, kept for debugging only.
// Dispatch decisions never read from the ring.
type RingEntry struct {
	StoreID    uuid.UUID `json:"storeId"`
	Topic      string    `json:"topic"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Ring is a fixed-capacity buffer of the most recent commerce events.
// Old entries are overwritten once capacity is reached.
type Ring struct {
	mu      sync.Mutex
	entries []RingEntry
	next    int
	full    bool
}

// NewRing creates a ring holding at most capacity entries.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring{entries: make([]RingEntry, capacity)}
}

// Add records one event, evicting the oldest entry when full.
func (r *Ring) Add(entry RingEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = entry
	r.next++
	if r.next == len(r.entries) {
		r.next = 0
		r.full = true
	}
}

// Recent returns the buffered entries, newest first.
func (r *Ring) Recent() []RingEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.next
	if r.full {
		size = len(r.entries)
	}

	result := make([]RingEntry, 0, size)
	for i := 1; i <= size; i++ {
		idx := (r.next - i + len(r.entries)) % len(r.entries)
		result = append(result, r.entries[idx])
	}
	return result
}

// Len reports how many entries are buffered.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return len(r.entries)
	}
	return r.next
}
