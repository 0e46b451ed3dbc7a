package domain

import "time"

// Slot is a derived candidate or occupied interval for a notary on a given
// date. Slots are recomputed on every load and carry no identity across
// reloads.
type Slot struct {
	Date        time.Time // midnight of the slot's calendar date
	Start       time.Time
	End         time.Time
	DurationMin int
	Available   bool

	// Merged is set only on occupied slots that collapse several
	// consecutive occupied intervals into one display unit.
	Merged bool
}

// Overlaps reports whether the slot's half-open interval intersects
// [start, end).
func (s Slot) Overlaps(start, end time.Time) bool {
	return s.Start.Before(end) && start.Before(s.End)
}
