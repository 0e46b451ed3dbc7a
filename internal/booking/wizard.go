// Package booking drives the client-facing reservation flow as a validated
// state machine: SelectType → SelectSlot → SelectModes → Confirm. Forward
// navigation is gated per step; backward navigation is always free.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/axiona25/Sportello-Notai-sub001/internal/backend"
	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
)

// Step is the wizard's position in the linear flow.
type Step int

const (
	StepSelectType Step = iota
	StepSelectSlot
	StepSelectModes
	StepConfirm
)

func (s Step) String() string {
	switch s {
	case StepSelectType:
		return "select type"
	case StepSelectSlot:
		return "select slot"
	case StepSelectModes:
		return "select modes"
	case StepConfirm:
		return "confirm"
	}
	return "unknown"
}

// Guard failures, surfaced as user-visible warnings by the caller.
var (
	ErrNoServiceSelected = errors.New("select a service type first")
	ErrNoSlotSelected    = errors.New("select a time slot first")
	ErrNoModeSelected    = errors.New("select at least one service mode")
	ErrNotOnConfirm      = errors.New("not on the confirmation step")
)

// Draft is the wizard's ephemeral working state. It is owned exclusively by
// one Wizard instance, destroyed on cancel or successful submission, and
// never persisted.
type Draft struct {
	Service *domain.ServiceType
	Slot    *domain.Slot
	Modes   []domain.ServiceMode
	Notes   string
}

// Wizard is the booking flow for one notary/client pair.
type Wizard struct {
	backend    backend.Client
	notaryID   string
	notaryName string
	clientID   string

	step  Step
	draft Draft
}

func NewWizard(b backend.Client, notaryID, notaryName, clientID string) *Wizard {
	return &Wizard{
		backend:    b,
		notaryID:   notaryID,
		notaryName: notaryName,
		clientID:   clientID,
		step:       StepSelectType,
	}
}

func (w *Wizard) Step() Step   { return w.step }
func (w *Wizard) Draft() Draft { return w.draft }

// NotaryID exposes the target notary for slot computation.
func (w *Wizard) NotaryID() string { return w.notaryID }

// SelectService records the chosen service type (SelectType step).
func (w *Wizard) SelectService(s domain.ServiceType) {
	w.draft.Service = &s
}

// SelectSlot records the chosen slot (SelectSlot step).
func (w *Wizard) SelectSlot(s domain.Slot) {
	w.draft.Slot = &s
}

// ToggleMode adds or removes a service mode from the draft.
func (w *Wizard) ToggleMode(m domain.ServiceMode) {
	for i, mode := range w.draft.Modes {
		if mode == m {
			w.draft.Modes = append(w.draft.Modes[:i], w.draft.Modes[i+1:]...)
			return
		}
	}
	w.draft.Modes = append(w.draft.Modes, m)
}

// SetNotes records the free-text notes.
func (w *Wizard) SetNotes(notes string) {
	w.draft.Notes = notes
}

// Next advances one step forward if the current step's guard is satisfied.
// A guard failure leaves the step unchanged and returns the warning.
func (w *Wizard) Next() error {
	switch w.step {
	case StepSelectType:
		if w.draft.Service == nil {
			return ErrNoServiceSelected
		}
	case StepSelectSlot:
		if w.draft.Slot == nil {
			return ErrNoSlotSelected
		}
	case StepSelectModes:
		if len(w.draft.Modes) == 0 {
			return ErrNoModeSelected
		}
	case StepConfirm:
		return nil // terminal; Submit leaves the wizard
	}
	w.step++
	return nil
}

// Back moves one step backward. Backward navigation is never gated; at the
// first step it is a no-op.
func (w *Wizard) Back() {
	if w.step > StepSelectType {
		w.step--
	}
}

// Submit assembles the creation request from the draft and invokes the
// backend. On success the created appointment is returned merged with the
// denormalized display fields; on failure the wizard remains on Confirm
// with the draft intact so the user can retry.
func (w *Wizard) Submit(ctx context.Context) (*domain.Appointment, error) {
	if w.step != StepConfirm {
		return nil, ErrNotOnConfirm
	}
	svc, slot := w.draft.Service, w.draft.Slot

	created, err := w.backend.CreateAppointment(ctx, backend.CreateAppointmentRequest{
		NotaryID:    w.notaryID,
		ClientID:    w.clientID,
		ServiceCode: svc.Code,
		Date:        slot.Date,
		Start:       slot.Start,
		End:         slot.End,
		DurationMin: svc.DurationMin,
		Modes:       w.draft.Modes,
		Notes:       w.draft.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	if created.NotaryName == "" {
		created.NotaryName = w.notaryName
	}
	if created.ServiceName == "" {
		created.ServiceName = svc.Name
	}

	w.draft = Draft{}
	return created, nil
}
