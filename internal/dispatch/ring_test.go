package dispatch

import (
	"testing"

	"github.com/google/uuid"
)

func TestRingEvictsOldestAtCapacity(t *testing.T) {
	ring := NewRing(3)
	ids := make([]uuid.UUID, 5)
	for i := range ids {
		ids[i] = uuid.New()
		ring.Add(RingEntry{StoreID: ids[i], Topic: "orders/create"})
	}

	if ring.Len() != 3 {
		t.Fatalf("ring length = %d, want 3", ring.Len())
	}

	recent := ring.Recent()
	if len(recent) != 3 {
		t.Fatalf("recent length = %d, want 3", len(recent))
	}
	// Newest first: entries 4, 3, 2.
	for i, want := range []uuid.UUID{ids[4], ids[3], ids[2]} {
		if recent[i].StoreID != want {
			t.Fatalf("recent[%d] = %s, want %s", i, recent[i].StoreID, want)
		}
	}
}

func TestRingPartiallyFilled(t *testing.T) {
	ring := NewRing(10)
	a, b := uuid.New(), uuid.New()
	ring.Add(RingEntry{StoreID: a})
	ring.Add(RingEntry{StoreID: b})

	recent := ring.Recent()
	if len(recent) != 2 {
		t.Fatalf("recent length = %d, want 2", len(recent))
	}
	if recent[0].StoreID != b || recent[1].StoreID != a {
		t.Fatalf("order wrong: %v", recent)
	}
}

func TestRingZeroCapacityIsClamped(t *testing.T) {
	ring := NewRing(0)
	ring.Add(RingEntry{Topic: "x"})
	if ring.Len() != 1 {
		t.Fatalf("length = %d, want 1", ring.Len())
	}
}
