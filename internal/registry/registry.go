// Package registry holds the client-side appointment cache: the one shared
// mutable resource read by the slot engine's callers, the notification
// reconciler, and the navigation coordinator. Only refresh cycles and
// explicit user actions mutate it; everybody else reads.
package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/axiona25/Sportello-Notai-sub001/internal/backend"
	"github.com/axiona25/Sportello-Notai-sub001/internal/bus"
	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
)

// Registry caches the appointments relevant to the current viewport.
type Registry struct {
	backend backend.Client
	bus     *bus.Bus
	log     *zap.Logger

	mu           sync.Mutex
	appointments []domain.Appointment
	filters      backend.AppointmentFilters
	loaded       bool
}

func New(b backend.Client, eb *bus.Bus, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{backend: b, bus: eb, log: log}
}

// SetViewport narrows the cache to the given filters (typically the visible
// calendar month). The next Load/Refresh uses them.
func (r *Registry) SetViewport(f backend.AppointmentFilters) {
	r.mu.Lock()
	r.filters = f
	r.mu.Unlock()
}

// Load performs the initial blocking load and always broadcasts
// appointments-changed on success, so dependent views render.
func (r *Registry) Load(ctx context.Context) error {
	fresh, err := r.fetch(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.appointments = fresh
	r.loaded = true
	r.mu.Unlock()

	r.bus.Publish(bus.AppointmentsChanged{})
	return nil
}

// Refresh is the silent periodic reload. A result deeply equal to the
// current cache is suppressed: no broadcast, no re-render cascade. On
// fetch failure the previous data is retained and the error returned.
func (r *Registry) Refresh(ctx context.Context) error {
	fresh, err := r.fetch(ctx)
	if err != nil {
		r.log.Warn("silent refresh failed, keeping cached appointments", zap.Error(err))
		return err
	}

	r.mu.Lock()
	unchanged := r.loaded && reflect.DeepEqual(r.appointments, fresh)
	if !unchanged {
		r.appointments = fresh
		r.loaded = true
	}
	r.mu.Unlock()

	if unchanged {
		return nil
	}
	r.bus.Publish(bus.AppointmentsChanged{})
	return nil
}

func (r *Registry) fetch(ctx context.Context) ([]domain.Appointment, error) {
	r.mu.Lock()
	f := r.filters
	r.mu.Unlock()

	fresh, err := r.backend.ListAppointments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	// Re-assert canonical statuses and a stable order so deep-equality
	// comparisons are meaningful across refreshes.
	for i := range fresh {
		fresh[i].Status = domain.NormalizeStatus(string(fresh[i].Status))
	}
	sort.Slice(fresh, func(i, j int) bool {
		if fresh[i].Start.Equal(fresh[j].Start) {
			return fresh[i].ID < fresh[j].ID
		}
		return fresh[i].Start.Before(fresh[j].Start)
	})
	return fresh, nil
}

// Appointments returns a copy of the cached set.
func (r *Registry) Appointments() []domain.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Appointment, len(r.appointments))
	copy(out, r.appointments)
	return out
}

// Get returns the cached appointment with the given id.
func (r *Registry) Get(id string) (domain.Appointment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Appointment{}, false
}

// ForDay returns the cached appointments on the given calendar date.
func (r *Registry) ForDay(day time.Time) []domain.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Appointment
	for _, a := range r.appointments {
		if a.SameDay(day) {
			out = append(out, a)
		}
	}
	return out
}

// Invalidate broadcasts appointments-changed without waiting for the next
// poll. Called after every mutating action.
func (r *Registry) Invalidate() {
	r.bus.Publish(bus.AppointmentsChanged{})
}

// ── mutating actions ─────────────────────────────────────────────────────────

// Confirm marks a provisional appointment as confirmed by the notary.
func (r *Registry) Confirm(ctx context.Context, id, note string) error {
	if err := r.backend.ConfirmAppointment(ctx, id, note); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

// Reject declines a provisional appointment with a reason.
func (r *Registry) Reject(ctx context.Context, id, reason string) error {
	if err := r.backend.RejectAppointment(ctx, id, reason); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

// Cancel withdraws an appointment with a reason.
func (r *Registry) Cancel(ctx context.Context, id, reason string) error {
	if err := r.backend.CancelAppointment(ctx, id, reason); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

// Delete removes an appointment entirely, freeing its slot.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.backend.DeleteAppointment(ctx, id); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

// Reschedule moves an appointment to a new interval.
func (r *Registry) Reschedule(ctx context.Context, id string, start, end time.Time) error {
	_, err := r.backend.UpdateAppointment(ctx, id, backend.UpdateAppointmentRequest{
		Start: &start,
		End:   &end,
	})
	if err != nil {
		return err
	}
	r.Invalidate()
	return nil
}
