// Package testutil provides the in-memory fake backend and fixture
// builders shared by package tests.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
)

// Day returns midnight UTC for the given date.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// At returns day with the clock set to hh:mm.
func At(day time.Time, hh, mm int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, day.Location())
}

// NewSlot builds a slot on day from hh1:mm1 to hh2:mm2.
func NewSlot(day time.Time, hh1, mm1, hh2, mm2 int, available bool) domain.Slot {
	start := At(day, hh1, mm1)
	end := At(day, hh2, mm2)
	return domain.Slot{
		Date:        day,
		Start:       start,
		End:         end,
		DurationMin: int(end.Sub(start) / time.Minute),
		Available:   available,
	}
}

// AppointmentOption mutates a fixture appointment.
type AppointmentOption func(*domain.Appointment)

// WithStatus sets the appointment status.
func WithStatus(s domain.AppointmentStatus) AppointmentOption {
	return func(a *domain.Appointment) { a.Status = s }
}

// WithService sets the service code and display name.
func WithService(code, name string) AppointmentOption {
	return func(a *domain.Appointment) {
		a.ServiceCode = code
		a.ServiceName = name
	}
}

// WithID overrides the generated appointment id.
func WithID(id string) AppointmentOption {
	return func(a *domain.Appointment) { a.ID = id }
}

// NewAppointment builds a provisional one-hour appointment starting at start.
func NewAppointment(start time.Time, opts ...AppointmentOption) domain.Appointment {
	a := domain.Appointment{
		ID:          uuid.NewString(),
		NotaryID:    "notary-1",
		ClientID:    "client-1",
		ServiceCode: "ROGITO",
		Start:       start,
		End:         start.Add(time.Hour),
		Status:      domain.StatusProvisional,
		CreatedAt:   start.Add(-24 * time.Hour),
		ClientName:  "Mario Rossi",
		NotaryName:  "Notaio Bianchi",
		ServiceName: "Rogito",
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// NewNotification builds an unread notification of the given type linked to
// an appointment.
func NewNotification(t domain.NotificationType, appointmentID string) domain.Notification {
	return domain.Notification{
		ID:            uuid.NewString(),
		Type:          t,
		AppointmentID: appointmentID,
		CreatedAt:     time.Now().Add(-time.Hour),
		ClientName:    "Mario Rossi",
		ServiceName:   "Rogito",
	}
}
