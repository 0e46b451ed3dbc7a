// Package bus is the in-process broadcast channel between the engines and
// the UI. It replaces ad-hoc global signals with named, typed events; the
// three events below are the only cross-component coupling mechanism.
package bus

import "sync"

// Event is a broadcast payload. The closed set of implementations lives in
// this package.
type Event interface{ isEvent() }

// AppointmentsChanged signals that the appointment set was mutated or
// refreshed and dependent views must reload.
type AppointmentsChanged struct{}

// NotificationsChanged signals that the notification set changed.
type NotificationsChanged struct{}

// SelectAppointment is a navigation intent: jump the calendar to the linked
// appointment. OpenDetail additionally opens the document verification view
// (document-lifecycle notifications only).
type SelectAppointment struct {
	AppointmentID string
	OpenDetail    bool
}

func (AppointmentsChanged) isEvent()  {}
func (NotificationsChanged) isEvent() {}
func (SelectAppointment) isEvent()    {}

// Bus fans events out to subscribers. Subscribers register around their own
// lifecycle and must cancel on teardown to avoid leaks. Publish never
// blocks on the bus itself; handlers run synchronously on the publishing
// goroutine.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

func New() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

// Subscribe registers fn for every published event and returns a cancel
// function that removes the subscription.
func (b *Bus) Subscribe(fn func(Event)) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers e to every current subscriber. The subscriber snapshot
// is taken under the lock; handlers run outside it so they may publish or
// unsubscribe without deadlocking.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	handlers := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(e)
	}
}
