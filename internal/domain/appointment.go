package domain

import "time"

// Appointment is the canonical client-side record for a reservation.
// Start/End form a half-open interval [Start, End).
type Appointment struct {
	ID          string
	NotaryID    string
	ClientID    string
	ServiceCode string
	Start       time.Time
	End         time.Time
	Status      AppointmentStatus
	Modes       []ServiceMode
	Notes       string
	CreatedAt   time.Time

	// Denormalized display fields.
	ClientName  string
	NotaryName  string
	ServiceName string
}

// Day returns the appointment's calendar date (midnight, local to Start).
func (a Appointment) Day() time.Time {
	y, m, d := a.Start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, a.Start.Location())
}

// DurationMinutes returns the scheduled length in whole minutes.
func (a Appointment) DurationMinutes() int {
	return int(a.End.Sub(a.Start) / time.Minute)
}

// SameDay reports whether t falls on the appointment's calendar date.
func (a Appointment) SameDay(t time.Time) bool {
	ay, am, ad := a.Start.Date()
	ty, tm, td := t.Date()
	return ay == ty && am == tm && ad == td
}

// HasMode reports whether the given mode is selected.
func (a Appointment) HasMode(m ServiceMode) bool {
	for _, mode := range a.Modes {
		if mode == m {
			return true
		}
	}
	return false
}
