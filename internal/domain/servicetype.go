package domain

import "time"

// TimeBand is a named time-of-day window, expressed as minutes from
// midnight. The window is half-open: a time t belongs to the band iff
// Start <= t < End.
type TimeBand struct {
	Name  string
	Start int
	End   int
}

// Contains reports whether the minute-of-day m falls inside the band.
func (b TimeBand) Contains(m int) bool {
	return m >= b.Start && m < b.End
}

// Standard office bands used when a service restricts bookable times.
var (
	BandMorning   = TimeBand{Name: "morning", Start: 8 * 60, End: 13 * 60}
	BandAfternoon = TimeBand{Name: "afternoon", Start: 13 * 60, End: 17 * 60}
	BandEvening   = TimeBand{Name: "evening", Start: 17 * 60, End: 20 * 60}
)

// ServiceType is a notarial act category with a default duration and
// optional weekday/time-band eligibility restrictions. Empty restriction
// slices mean "all allowed".
type ServiceType struct {
	Code            string
	Name            string
	DurationMin     int
	AllowedWeekdays []time.Weekday
	AllowedBands    []TimeBand
}

// WeekdayAllowed reports whether the service may be booked on the given
// weekday. No configured restriction allows every weekday.
func (s ServiceType) WeekdayAllowed(d time.Weekday) bool {
	if len(s.AllowedWeekdays) == 0 {
		return true
	}
	for _, w := range s.AllowedWeekdays {
		if w == d {
			return true
		}
	}
	return false
}

// TimeAllowed reports whether a slot starting at t is eligible. Band
// membership is start-anchored: only the slot's start must lie inside a
// band, its end may cross the boundary.
func (s ServiceType) TimeAllowed(t time.Time) bool {
	if len(s.AllowedBands) == 0 {
		return true
	}
	m := t.Hour()*60 + t.Minute()
	for _, b := range s.AllowedBands {
		if b.Contains(m) {
			return true
		}
	}
	return false
}
