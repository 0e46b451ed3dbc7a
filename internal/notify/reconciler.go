// Package notify keeps the notification set consistent with appointment
// state. A notification is only as relevant as the appointment it points
// at; reconciliation deletes the ones the world has already moved past and
// derives the unread count from the survivors.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/axiona25/Sportello-Notai-sub001/internal/backend"
	"github.com/axiona25/Sportello-Notai-sub001/internal/bus"
	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
	"github.com/axiona25/Sportello-Notai-sub001/internal/registry"
)

// opensDetail is the closed mapping from notification type to "also open
// the document verification view on click". Document-lifecycle types only;
// plain appointment requests never open it. New types must be added here
// explicitly.
var opensDetail = map[domain.NotificationType]bool{
	domain.NotifDocumentUploaded:  true,
	domain.NotifDocumentApproved:  true,
	domain.NotifDocumentRejected:  true,
	domain.NotifDocumentsRequired: true,
}

// persistUntilResolved returns the types that must stay visible after a
// click until their underlying condition is resolved, per role: clients
// keep documents-required, notaries keep appointment-requested.
func persistUntilResolved(role domain.Role) map[domain.NotificationType]bool {
	switch role {
	case domain.RoleNotary:
		return map[domain.NotificationType]bool{domain.NotifAppointmentRequested: true}
	default:
		return map[domain.NotificationType]bool{domain.NotifDocumentsRequired: true}
	}
}

// Config tunes the reconciler's timing. Zero values run passes and
// deletions synchronously/immediately, which tests rely on.
type Config struct {
	Role        domain.Role
	Debounce    time.Duration
	DeleteDelay time.Duration
}

// Reconciler owns the client-side notification set.
type Reconciler struct {
	backend  backend.Client
	registry *registry.Registry
	bus      *bus.Bus
	log      *zap.Logger
	cfg      Config

	mu            sync.Mutex
	notifications []domain.Notification
	debounceTimer *time.Timer

	unsubscribe func()
}

func New(b backend.Client, reg *registry.Registry, eb *bus.Bus, cfg Config, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		backend:  b,
		registry: reg,
		bus:      eb,
		log:      log,
		cfg:      cfg,
	}
}

// Start subscribes the reconciler to appointment changes so every registry
// update schedules a pass.
func (r *Reconciler) Start() {
	r.unsubscribe = r.bus.Subscribe(func(e bus.Event) {
		if _, ok := e.(bus.AppointmentsChanged); ok {
			r.Trigger()
		}
	})
}

// Stop removes the bus subscription and cancels a pending debounce.
func (r *Reconciler) Stop() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
	r.mu.Lock()
	if r.debounceTimer != nil {
		r.debounceTimer.Stop()
	}
	r.mu.Unlock()
}

// Notifications returns a copy of the current live set.
func (r *Reconciler) Notifications() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

// UnreadCount counts unread notifications among the survivors of the last
// reconciliation pass.
func (r *Reconciler) UnreadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, notif := range r.notifications {
		if !notif.Read {
			n++
		}
	}
	return n
}

// RefreshNotifications fetches the latest batch and runs a pass over it.
// Fetch failure retains the previous set.
func (r *Reconciler) RefreshNotifications(ctx context.Context) error {
	fresh, err := r.backend.ListNotifications(ctx)
	if err != nil {
		r.log.Warn("notification fetch failed, keeping current set", zap.Error(err))
		return err
	}
	r.mu.Lock()
	r.notifications = fresh
	r.mu.Unlock()
	r.Trigger()
	return nil
}

// Trigger schedules a reconciliation pass, debounced so bursts of
// appointment/notification changes collapse into one pass. With a zero
// debounce the pass runs synchronously.
func (r *Reconciler) Trigger() {
	if r.cfg.Debounce <= 0 {
		r.runPass(context.Background())
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.debounceTimer != nil {
		r.debounceTimer.Stop()
	}
	r.debounceTimer = time.AfterFunc(r.cfg.Debounce, func() {
		r.runPass(context.Background())
	})
}

// runPass evaluates every notification's obsolescence, deletes the obsolete
// ones, and broadcasts notifications-changed when the set shrank. One
// notification's failure never aborts the pass.
func (r *Reconciler) runPass(ctx context.Context) {
	r.mu.Lock()
	current := make([]domain.Notification, len(r.notifications))
	copy(current, r.notifications)
	r.mu.Unlock()

	var live []domain.Notification
	changed := false
	for _, n := range current {
		obsolete := r.isObsolete(ctx, n)
		if !obsolete {
			live = append(live, n)
			continue
		}
		if err := r.backend.DeleteNotification(ctx, n.ID); err != nil {
			r.log.Warn("deleting obsolete notification failed",
				zap.String("notification_id", n.ID),
				zap.String("type", string(n.Type)),
				zap.Error(err))
			live = append(live, n) // keep it; a later pass retries
			continue
		}
		changed = true
	}

	r.mu.Lock()
	r.notifications = live
	r.mu.Unlock()

	if changed {
		r.bus.Publish(bus.NotificationsChanged{})
	}
}

// isObsolete applies the per-type obsolescence rules. The rules are
// independent; a notification survives only if no rule matches.
func (r *Reconciler) isObsolete(ctx context.Context, n domain.Notification) bool {
	switch n.Type {
	case domain.NotifDocumentApproved, domain.NotifDocumentRejected:
		// Single-use: obsolete once observed.
		return true

	case domain.NotifAppointmentConfirmed:
		apt, ok := r.registry.Get(n.AppointmentID)
		return ok && apt.Status != domain.StatusProvisional

	case domain.NotifAppointmentRequested:
		apt, ok := r.registry.Get(n.AppointmentID)
		return ok && domain.NotaryActedStatuses[apt.Status]

	case domain.NotifDocumentsRequired:
		docs, err := r.backend.ListDocuments(ctx, n.AppointmentID)
		if err != nil {
			r.log.Warn("document completion check failed",
				zap.String("appointment_id", n.AppointmentID),
				zap.Error(err))
			return false
		}
		return domain.RequiredDocumentsComplete(docs)
	}
	return false
}

// Click handles a user click on a notification: mark it read (if unread),
// schedule its deletion after the configured delay unless its type must
// persist until resolved, and emit the navigation intent.
func (r *Reconciler) Click(ctx context.Context, id string) {
	r.mu.Lock()
	var clicked *domain.Notification
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			clicked = &r.notifications[i]
			break
		}
	}
	if clicked == nil {
		r.mu.Unlock()
		return
	}
	n := *clicked
	wasRead := n.Read
	clicked.Read = true
	r.mu.Unlock()

	if !wasRead {
		if err := r.backend.MarkNotificationRead(ctx, id); err != nil {
			r.log.Warn("marking notification read failed", zap.String("notification_id", id), zap.Error(err))
		}
	}

	if !persistUntilResolved(r.cfg.Role)[n.Type] {
		r.scheduleDelete(id)
	}

	if n.AppointmentID != "" {
		r.bus.Publish(bus.SelectAppointment{
			AppointmentID: n.AppointmentID,
			OpenDetail:    opensDetail[n.Type],
		})
	}
}

// MarkAllRead marks every notification read, locally and on the backend.
func (r *Reconciler) MarkAllRead(ctx context.Context) error {
	if err := r.backend.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	for i := range r.notifications {
		r.notifications[i].Read = true
	}
	r.mu.Unlock()
	r.bus.Publish(bus.NotificationsChanged{})
	return nil
}

// scheduleDelete removes the notification after the configured delay. The
// backend treats a duplicate delete as a no-op, so racing a concurrent
// reconciliation pass is harmless.
func (r *Reconciler) scheduleDelete(id string) {
	remove := func() {
		if err := r.backend.DeleteNotification(context.Background(), id); err != nil {
			r.log.Warn("timed notification delete failed", zap.String("notification_id", id), zap.Error(err))
			return
		}
		r.mu.Lock()
		for i, n := range r.notifications {
			if n.ID == id {
				r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
				break
			}
		}
		r.mu.Unlock()
		r.bus.Publish(bus.NotificationsChanged{})
	}
	if r.cfg.DeleteDelay <= 0 {
		remove()
		return
	}
	time.AfterFunc(r.cfg.DeleteDelay, remove)
}
