// Package availability derives the bookable calendar for a notary/service
// combination. It only ever reads appointment data (via the backend's slot
// feed) and recomputes from scratch on every call, so identical inputs
// against the same backend snapshot yield identical output.
package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/axiona25/Sportello-Notai-sub001/internal/backend"
	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
	"github.com/axiona25/Sportello-Notai-sub001/internal/holiday"
)

// Request are the inputs of one slot computation. When SelectedDate is set
// the result is narrowed to that day, band-filtered, and occupied intervals
// are merged for display. ExcludeAppointmentID is used while rescheduling:
// the appointment being moved must not block itself.
type Request struct {
	NotaryID             string
	RangeStart           time.Time
	RangeEnd             time.Time
	Service              domain.ServiceType
	SelectedDate         *time.Time
	ExcludeAppointmentID string
}

// Engine computes bookable/occupied slots from the backend's raw feed.
type Engine struct {
	backend backend.Client
}

func New(b backend.Client) *Engine {
	return &Engine{backend: b}
}

// ComputeSlots runs the full pipeline: fetch, date eligibility, band
// filtering, occupied-merge, sorted union. Fetch failures are returned to
// the caller; the engine does not retry and keeps no state.
func (e *Engine) ComputeSlots(ctx context.Context, req Request) ([]domain.Slot, error) {
	raw, err := e.backend.GetAvailableSlots(ctx, backend.SlotQuery{
		NotaryID:             req.NotaryID,
		StartDate:            req.RangeStart,
		EndDate:              req.RangeEnd,
		DurationMin:          req.Service.DurationMin,
		ExcludeAppointmentID: req.ExcludeAppointmentID,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching slots: %w", err)
	}

	slots := FilterEligibleDates(raw, req.Service)

	if req.SelectedDate != nil {
		slots = filterDay(slots, *req.SelectedDate)
		slots = FilterByBands(slots, req.Service)
		slots = applyMerge(slots)
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots, nil
}

// FilterEligibleDates drops slots on holidays, weekends, and weekdays the
// service does not allow. A day with zero surviving slots is not an error.
func FilterEligibleDates(slots []domain.Slot, svc domain.ServiceType) []domain.Slot {
	out := make([]domain.Slot, 0, len(slots))
	for _, s := range slots {
		if holiday.IsExcluded(s.Date) {
			continue
		}
		if !svc.WeekdayAllowed(s.Date.Weekday()) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FilterByBands drops slots whose start time lies outside every allowed
// time band. Band membership is start-anchored: a slot spanning a band
// boundary is kept as long as its start is inside the band.
func FilterByBands(slots []domain.Slot, svc domain.ServiceType) []domain.Slot {
	if len(svc.AllowedBands) == 0 {
		return slots
	}
	out := make([]domain.Slot, 0, len(slots))
	for _, s := range slots {
		if svc.TimeAllowed(s.Start) {
			out = append(out, s)
		}
	}
	return out
}

// MergeOccupied collapses consecutive occupied slots (end of one equals
// start of the next) into a single occupied slot spanning the union, with
// the durations accumulated. Available slots are never merged, and an
// available slot between two occupied ones breaks the run.
func MergeOccupied(occupied []domain.Slot) []domain.Slot {
	if len(occupied) == 0 {
		return nil
	}
	sorted := make([]domain.Slot, len(occupied))
	copy(sorted, occupied)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	merged := []domain.Slot{sorted[0]}
	mergedCount := 1
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if last.End.Equal(s.Start) {
			last.End = s.End
			last.DurationMin += s.DurationMin
			mergedCount++
			last.Merged = mergedCount > 1
			continue
		}
		merged = append(merged, s)
		mergedCount = 1
	}
	return merged
}

// applyMerge splits the day's slots into available and occupied, merges the
// occupied runs, and recombines.
func applyMerge(slots []domain.Slot) []domain.Slot {
	var available, occupied []domain.Slot
	for _, s := range slots {
		if s.Available {
			available = append(available, s)
		} else {
			occupied = append(occupied, s)
		}
	}
	return append(available, MergeOccupied(occupied)...)
}

func filterDay(slots []domain.Slot, day time.Time) []domain.Slot {
	y, m, d := day.Date()
	out := make([]domain.Slot, 0, len(slots))
	for _, s := range slots {
		sy, sm, sd := s.Date.Date()
		if sy == y && sm == m && sd == d {
			out = append(out, s)
		}
	}
	return out
}
