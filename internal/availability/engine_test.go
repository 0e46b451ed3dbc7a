package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
	"github.com/axiona25/Sportello-Notai-sub001/internal/testutil"
)

// tuesday is a plain working day: no weekend, no holiday.
var tuesday = testutil.Day(2026, time.March, 10)

func unrestricted(durationMin int) domain.ServiceType {
	return domain.ServiceType{Code: "ROGITO", Name: "Rogito", DurationMin: durationMin}
}

func TestComputeSlots_MergesConsecutiveOccupied(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.Slots = []domain.Slot{
		testutil.NewSlot(tuesday, 8, 30, 9, 0, true),
		testutil.NewSlot(tuesday, 9, 0, 9, 30, false),
		testutil.NewSlot(tuesday, 9, 30, 10, 0, false),
		testutil.NewSlot(tuesday, 10, 0, 10, 30, true),
		testutil.NewSlot(tuesday, 10, 30, 11, 0, true),
	}

	eng := New(fb)
	day := tuesday
	slots, err := eng.ComputeSlots(context.Background(), Request{
		NotaryID:     "notary-1",
		RangeStart:   tuesday,
		RangeEnd:     tuesday.AddDate(0, 0, 1),
		Service:      unrestricted(30),
		SelectedDate: &day,
	})
	require.NoError(t, err)

	// One merged occupied region 09:00-10:00 plus the three available slots.
	require.Len(t, slots, 4)
	var occupied []domain.Slot
	for _, s := range slots {
		if !s.Available {
			occupied = append(occupied, s)
		}
	}
	require.Len(t, occupied, 1)
	assert.Equal(t, testutil.At(tuesday, 9, 0), occupied[0].Start)
	assert.Equal(t, testutil.At(tuesday, 10, 0), occupied[0].End)
	assert.Equal(t, 60, occupied[0].DurationMin)
	assert.True(t, occupied[0].Merged)

	// Sorted by start time.
	for i := 1; i < len(slots); i++ {
		assert.False(t, slots[i].Start.Before(slots[i-1].Start))
	}
}

func TestComputeSlots_AvailableNeverMerged(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.Slots = []domain.Slot{
		testutil.NewSlot(tuesday, 9, 0, 9, 30, false),
		testutil.NewSlot(tuesday, 9, 30, 10, 0, true),
		testutil.NewSlot(tuesday, 10, 0, 10, 30, false),
	}

	eng := New(fb)
	day := tuesday
	slots, err := eng.ComputeSlots(context.Background(), Request{
		NotaryID:     "notary-1",
		RangeStart:   tuesday,
		RangeEnd:     tuesday.AddDate(0, 0, 1),
		Service:      unrestricted(30),
		SelectedDate: &day,
	})
	require.NoError(t, err)

	// The available slot between the two occupied ones breaks the run:
	// nothing merges.
	require.Len(t, slots, 3)
	for _, s := range slots {
		assert.False(t, s.Merged)
	}
}

func TestComputeSlots_ExcludesWeekendsAndHolidays(t *testing.T) {
	saturday := testutil.Day(2026, time.March, 7)
	republicDay := testutil.Day(2026, time.June, 2)

	fb := testutil.NewFakeBackend()
	fb.Slots = []domain.Slot{
		testutil.NewSlot(tuesday, 9, 0, 9, 30, true),
		testutil.NewSlot(saturday, 9, 0, 9, 30, true),
		testutil.NewSlot(republicDay, 9, 0, 9, 30, true),
	}

	eng := New(fb)
	slots, err := eng.ComputeSlots(context.Background(), Request{
		NotaryID:   "notary-1",
		RangeStart: tuesday,
		RangeEnd:   republicDay.AddDate(0, 0, 1),
		Service:    unrestricted(30),
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, tuesday, slots[0].Date)
}

func TestComputeSlots_WeekdayRestriction(t *testing.T) {
	wednesday := tuesday.AddDate(0, 0, 1)

	fb := testutil.NewFakeBackend()
	fb.Slots = []domain.Slot{
		testutil.NewSlot(tuesday, 9, 0, 9, 30, true),
		testutil.NewSlot(wednesday, 9, 0, 9, 30, true),
	}

	svc := unrestricted(30)
	svc.AllowedWeekdays = []time.Weekday{time.Wednesday}

	eng := New(fb)
	slots, err := eng.ComputeSlots(context.Background(), Request{
		NotaryID:   "notary-1",
		RangeStart: tuesday,
		RangeEnd:   wednesday.AddDate(0, 0, 1),
		Service:    svc,
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, wednesday, slots[0].Date)
}

func TestFilterByBands_StartAnchored(t *testing.T) {
	svc := unrestricted(30)
	svc.AllowedBands = []domain.TimeBand{domain.BandMorning} // 08:00-13:00

	slots := []domain.Slot{
		testutil.NewSlot(tuesday, 7, 30, 8, 0, true),   // starts before the band
		testutil.NewSlot(tuesday, 12, 45, 13, 15, true), // spans the boundary, start inside
		testutil.NewSlot(tuesday, 13, 0, 13, 30, true),  // starts exactly at band end
	}

	kept := FilterByBands(slots, svc)
	require.Len(t, kept, 1)
	assert.Equal(t, testutil.At(tuesday, 12, 45), kept[0].Start)
}

func TestFilterByBands_NoRestrictionKeepsAll(t *testing.T) {
	slots := []domain.Slot{
		testutil.NewSlot(tuesday, 7, 0, 7, 30, true),
		testutil.NewSlot(tuesday, 19, 30, 20, 0, true),
	}
	assert.Len(t, FilterByBands(slots, unrestricted(30)), 2)
}

func TestMergeOccupied_ChainSpansAndSumsDurations(t *testing.T) {
	chain := []domain.Slot{
		testutil.NewSlot(tuesday, 10, 0, 10, 30, false),
		testutil.NewSlot(tuesday, 9, 0, 9, 30, false), // out of order on purpose
		testutil.NewSlot(tuesday, 9, 30, 10, 0, false),
	}
	merged := MergeOccupied(chain)
	require.Len(t, merged, 1)
	assert.Equal(t, testutil.At(tuesday, 9, 0), merged[0].Start)
	assert.Equal(t, testutil.At(tuesday, 10, 30), merged[0].End)
	assert.Equal(t, 90, merged[0].DurationMin)
	assert.True(t, merged[0].Merged)
}

func TestMergeOccupied_GapBreaksRun(t *testing.T) {
	merged := MergeOccupied([]domain.Slot{
		testutil.NewSlot(tuesday, 9, 0, 9, 30, false),
		testutil.NewSlot(tuesday, 10, 0, 10, 30, false),
	})
	require.Len(t, merged, 2)
	assert.False(t, merged[0].Merged)
	assert.False(t, merged[1].Merged)
}

func TestComputeSlots_Idempotent(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.Slots = []domain.Slot{
		testutil.NewSlot(tuesday, 9, 0, 9, 30, false),
		testutil.NewSlot(tuesday, 9, 30, 10, 0, false),
		testutil.NewSlot(tuesday, 11, 0, 11, 30, true),
	}

	eng := New(fb)
	day := tuesday
	req := Request{
		NotaryID:     "notary-1",
		RangeStart:   tuesday,
		RangeEnd:     tuesday.AddDate(0, 0, 1),
		Service:      unrestricted(30),
		SelectedDate: &day,
	}

	first, err := eng.ComputeSlots(context.Background(), req)
	require.NoError(t, err)
	second, err := eng.ComputeSlots(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeSlots_FetchErrorPropagates(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.SlotsErr = errors.New("boom")

	eng := New(fb)
	_, err := eng.ComputeSlots(context.Background(), Request{
		NotaryID:   "notary-1",
		RangeStart: tuesday,
		RangeEnd:   tuesday.AddDate(0, 0, 1),
		Service:    unrestricted(30),
	})
	assert.Error(t, err)
}

func TestComputeSlots_PassesExcludeID(t *testing.T) {
	fb := testutil.NewFakeBackend()
	eng := New(fb)
	_, err := eng.ComputeSlots(context.Background(), Request{
		NotaryID:             "notary-1",
		RangeStart:           tuesday,
		RangeEnd:             tuesday.AddDate(0, 0, 1),
		Service:              unrestricted(45),
		ExcludeAppointmentID: "apt-9",
	})
	require.NoError(t, err)
	require.Len(t, fb.SlotQueries, 1)
	assert.Equal(t, "apt-9", fb.SlotQueries[0].ExcludeAppointmentID)
	assert.Equal(t, 45, fb.SlotQueries[0].DurationMin)
}
