package reminders

import "time"

// IsDue reports whether a delayed stage should fire: the whole minutes
// elapsed since the anchor must reach the configured delay. Sub-minute
// remainders never count, so a stage fires on the first scan tick at or after
// the boundary.
func IsDue(anchor time.Time, delayMinutes int, now time.Time) bool {
	elapsed := now.Sub(anchor)
	if elapsed < 0 {
		return false
	}
	return int(elapsed.Minutes()) >= delayMinutes
}
