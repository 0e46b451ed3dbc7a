package testutil

import (
	"context"
	"sync"

	"github.com/axiona25/Sportello-Notai-sub001/internal/backend"
	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
)

// FakeBackend is an in-memory backend.Client for tests. Fields are plain
// data the test arranges up front; call-recording fields let assertions see
// what the engine sent. Safe for use from tea.Cmd goroutines.
type FakeBackend struct {
	mu sync.Mutex

	Slots    []domain.Slot
	SlotsErr error

	Appointments []domain.Appointment
	ListErr      error

	ServiceTypes    []domain.ServiceType
	ServiceTypesErr error

	Notifications    []domain.Notification
	NotificationsErr error

	Documents map[string][]domain.Document

	CreateResult *domain.Appointment
	CreateErr    error

	ConfirmErr error
	RejectErr  error
	CancelErr  error
	DeleteErr  error
	UpdateErr  error

	// DeleteNotifErrs maps notification id to a forced error.
	DeleteNotifErrs map[string]error

	// Recorded calls.
	SlotQueries          []backend.SlotQuery
	CreatedRequests      []backend.CreateAppointmentRequest
	ConfirmedIDs         []string
	RejectedIDs          []string
	CancelledIDs         []string
	DeletedIDs           []string
	UpdatedIDs           []string
	ReadNotificationIDs  []string
	DeletedNotifications []string
	MarkAllReadCalls     int
	VerifiedDocuments    []string
	UploadedDocuments    []string
}

var _ backend.Client = (*FakeBackend)(nil)

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Documents:       make(map[string][]domain.Document),
		DeleteNotifErrs: make(map[string]error),
	}
}

func (f *FakeBackend) GetAvailableSlots(_ context.Context, q backend.SlotQuery) ([]domain.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SlotQueries = append(f.SlotQueries, q)
	if f.SlotsErr != nil {
		return nil, f.SlotsErr
	}
	out := make([]domain.Slot, len(f.Slots))
	copy(out, f.Slots)
	return out, nil
}

func (f *FakeBackend) CreateAppointment(_ context.Context, req backend.CreateAppointmentRequest) (*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreatedRequests = append(f.CreatedRequests, req)
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if f.CreateResult != nil {
		a := *f.CreateResult
		return &a, nil
	}
	a := domain.Appointment{
		ID:          "created-1",
		NotaryID:    req.NotaryID,
		ClientID:    req.ClientID,
		ServiceCode: req.ServiceCode,
		Start:       req.Start,
		End:         req.End,
		Status:      domain.StatusProvisional,
		Modes:       req.Modes,
		Notes:       req.Notes,
	}
	return &a, nil
}

// ListAppointments honors the From/To range so viewport-scoped callers see
// realistic windowing; the id filters are not modeled.
func (f *FakeBackend) ListAppointments(_ context.Context, filters backend.AppointmentFilters) ([]domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]domain.Appointment, 0, len(f.Appointments))
	for _, a := range f.Appointments {
		if !filters.From.IsZero() && a.Start.Before(filters.From) {
			continue
		}
		if !filters.To.IsZero() && !a.Start.Before(filters.To) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *FakeBackend) GetAppointment(_ context.Context, id string) (*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.Appointments {
		if a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, backend.ErrNotFound
}

func (f *FakeBackend) UpdateAppointment(_ context.Context, id string, req backend.UpdateAppointmentRequest) (*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdatedIDs = append(f.UpdatedIDs, id)
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	for i, a := range f.Appointments {
		if a.ID == id {
			if req.Start != nil {
				f.Appointments[i].Start = *req.Start
			}
			if req.End != nil {
				f.Appointments[i].End = *req.End
			}
			if req.Notes != nil {
				f.Appointments[i].Notes = *req.Notes
			}
			cp := f.Appointments[i]
			return &cp, nil
		}
	}
	return nil, backend.ErrNotFound
}

func (f *FakeBackend) ConfirmAppointment(_ context.Context, id, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ConfirmedIDs = append(f.ConfirmedIDs, id)
	return f.ConfirmErr
}

func (f *FakeBackend) RejectAppointment(_ context.Context, id, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RejectedIDs = append(f.RejectedIDs, id)
	return f.RejectErr
}

func (f *FakeBackend) CancelAppointment(_ context.Context, id, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CancelledIDs = append(f.CancelledIDs, id)
	return f.CancelErr
}

func (f *FakeBackend) DeleteAppointment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeletedIDs = append(f.DeletedIDs, id)
	return f.DeleteErr
}

func (f *FakeBackend) ListServiceTypes(_ context.Context) ([]domain.ServiceType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ServiceTypesErr != nil {
		return nil, f.ServiceTypesErr
	}
	out := make([]domain.ServiceType, len(f.ServiceTypes))
	copy(out, f.ServiceTypes)
	return out, nil
}

func (f *FakeBackend) ListDocuments(_ context.Context, appointmentID string) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Document, len(f.Documents[appointmentID]))
	copy(out, f.Documents[appointmentID])
	return out, nil
}

func (f *FakeBackend) UploadDocument(_ context.Context, documentID, _ string, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UploadedDocuments = append(f.UploadedDocuments, documentID)
	return nil
}

func (f *FakeBackend) VerifyDocument(_ context.Context, documentID string, _ backend.VerifyAction, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.VerifiedDocuments = append(f.VerifiedDocuments, documentID)
	return nil
}

func (f *FakeBackend) ListNotifications(_ context.Context) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NotificationsErr != nil {
		return nil, f.NotificationsErr
	}
	out := make([]domain.Notification, len(f.Notifications))
	copy(out, f.Notifications)
	return out, nil
}

func (f *FakeBackend) MarkNotificationRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReadNotificationIDs = append(f.ReadNotificationIDs, id)
	for i := range f.Notifications {
		if f.Notifications[i].ID == id {
			f.Notifications[i].Read = true
		}
	}
	return nil
}

func (f *FakeBackend) MarkAllNotificationsRead(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MarkAllReadCalls++
	for i := range f.Notifications {
		f.Notifications[i].Read = true
	}
	return nil
}

func (f *FakeBackend) DeleteNotification(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.DeleteNotifErrs[id]; err != nil {
		return err
	}
	f.DeletedNotifications = append(f.DeletedNotifications, id)
	for i, n := range f.Notifications {
		if n.ID == id {
			f.Notifications = append(f.Notifications[:i], f.Notifications[i+1:]...)
			break
		}
	}
	return nil
}

// SetNotifications replaces the notification set under the lock.
func (f *FakeBackend) SetNotifications(ns []domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Notifications = append([]domain.Notification(nil), ns...)
}

// SetAppointments replaces the appointment set under the lock.
func (f *FakeBackend) SetAppointments(as []domain.Appointment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Appointments = append([]domain.Appointment(nil), as...)
}
