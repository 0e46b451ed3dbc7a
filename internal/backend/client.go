// Package backend is the HTTP consumer of the booking service. It owns the
// full wire surface of the portal backend and is the only package that sees
// raw backend payloads: everything is normalized into internal/domain
// records before it leaves this package.
package backend

import (
	"context"
	"time"

	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
)

// SlotQuery are the parameters for an availability fetch. The optional
// ExcludeAppointmentID removes one appointment's own interval from the busy
// set, so an appointment being rescheduled does not block itself.
type SlotQuery struct {
	NotaryID             string
	StartDate            time.Time
	EndDate              time.Time
	DurationMin          int
	ExcludeAppointmentID string
}

// CreateAppointmentRequest is the payload assembled by the booking wizard's
// terminal step.
type CreateAppointmentRequest struct {
	NotaryID    string
	ClientID    string
	ServiceCode string
	Date        time.Time
	Start       time.Time
	End         time.Time
	DurationMin int
	Modes       []domain.ServiceMode
	Notes       string
}

// UpdateAppointmentRequest carries the partial fields of an edit
// (reschedule). Nil fields are left untouched server-side.
type UpdateAppointmentRequest struct {
	Start *time.Time
	End   *time.Time
	Notes *string
}

// AppointmentFilters narrows a ListAppointments call.
type AppointmentFilters struct {
	NotaryID string
	ClientID string
	From     time.Time
	To       time.Time
}

// VerifyAction is the notary's decision on an uploaded document.
type VerifyAction string

const (
	VerifyApprove VerifyAction = "approve"
	VerifyReject  VerifyAction = "reject"
)

// Client is the abstract backend consumed by the engines. The HTTP
// implementation lives in this package; tests use the in-memory fake from
// internal/testutil.
type Client interface {
	GetAvailableSlots(ctx context.Context, q SlotQuery) ([]domain.Slot, error)

	CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (*domain.Appointment, error)
	ListAppointments(ctx context.Context, f AppointmentFilters) ([]domain.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*domain.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, req UpdateAppointmentRequest) (*domain.Appointment, error)
	ConfirmAppointment(ctx context.Context, id, note string) error
	RejectAppointment(ctx context.Context, id, reason string) error
	CancelAppointment(ctx context.Context, id, reason string) error
	DeleteAppointment(ctx context.Context, id string) error

	ListServiceTypes(ctx context.Context) ([]domain.ServiceType, error)

	ListDocuments(ctx context.Context, appointmentID string) ([]domain.Document, error)
	UploadDocument(ctx context.Context, documentID, filename string, data []byte) error
	VerifyDocument(ctx context.Context, documentID string, action VerifyAction, rejectionNote string) error

	ListNotifications(ctx context.Context) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
}
