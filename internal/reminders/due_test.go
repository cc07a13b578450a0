package reminders

import (
	"testing"
	"time"
)

func TestIsDue(t *testing.T) {
	anchor := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		delay   int
		want    bool
	}{
		{"well past the delay", 90 * time.Minute, 60, true},
		{"short of the delay", 90 * time.Minute, 120, false},
		{"exactly at the boundary", 60 * time.Minute, 60, true},
		{"one second before the boundary", 60*time.Minute - time.Second, 60, false},
		{"partial minutes do not count", 59*time.Minute + 59*time.Second, 60, false},
		{"zero delay fires immediately", 0, 0, true},
		{"zero delay with elapsed time", 5 * time.Minute, 0, true},
		{"anchor in the future", -10 * time.Minute, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := anchor.Add(tt.elapsed)
			if got := IsDue(anchor, tt.delay, now); got != tt.want {
				t.Fatalf("IsDue(elapsed=%v, delay=%d) = %v, want %v", tt.elapsed, tt.delay, got, tt.want)
			}
		})
	}
}
