package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
	"github.com/axiona25/Sportello-Notai-sub001/internal/testutil"
)

func newTestState(t *testing.T, fb *testutil.FakeBackend, role domain.Role) *SharedState {
	t.Helper()
	return &SharedState{App: testApp(t, fb, role), Nav: &coordinator{}}
}

func TestCalendar_StaleLoadDiscarded(t *testing.T) {
	state := newTestState(t, testutil.NewFakeBackend(), domain.RoleClient)
	v := newCalendarView(state)

	// A newer load is in flight; the old result must not land.
	v.loadSeq = 2
	_, _ = v.Update(apptsLoadedMsg{seq: 1, err: errors.New("stale failure")})

	assert.True(t, v.loading)
	assert.NoError(t, v.err)

	_, _ = v.Update(apptsLoadedMsg{seq: 2})
	assert.False(t, v.loading)
}

func TestCalendar_MonthFlipReloadsViewport(t *testing.T) {
	fb := testutil.NewFakeBackend()
	state := newTestState(t, fb, domain.RoleClient)
	v := newCalendarView(state)
	_ = v.reload()()

	before := v.loadSeq
	cmd := v.setSelected(v.selected.AddDate(0, 1, 0))

	assert.NotNil(t, cmd)
	assert.Equal(t, before+1, v.loadSeq)
	assert.Equal(t, firstOfMonth(v.selected), v.month)
}

func TestCalendar_DateChangeKeepsSelectionDuringJump(t *testing.T) {
	fb := testutil.NewFakeBackend()
	appt := testutil.NewAppointment(todayAt(10))
	fb.SetAppointments([]domain.Appointment{appt})
	state := newTestState(t, fb, domain.RoleClient)

	v := newCalendarView(state)
	_ = v.reload()()
	v.selectedApptID = appt.ID

	state.Nav.Begin(appt.ID, false)
	_ = v.setSelected(v.selected.AddDate(0, 0, 1))
	assert.Equal(t, appt.ID, v.selectedApptID, "jump in flight keeps selection")

	state.Nav.Finish()
	_ = v.setSelected(v.selected.AddDate(0, 0, 1))
	assert.Empty(t, v.selectedApptID, "idle date change clears selection")
}

func TestCoordinator_SupersededJump(t *testing.T) {
	c := &coordinator{}

	c.Begin("a", false)
	first := c.seq
	c.Begin("b", true)

	assert.True(t, c.Active())
	assert.Equal(t, "b", c.Target())
	assert.True(t, c.OpenDetail())
	assert.False(t, c.Current(first), "stale settle ticks are ignored")
	assert.True(t, c.Current(c.seq))

	c.Finish()
	assert.False(t, c.Active())
	assert.Empty(t, c.Target())
}

func TestMondayIndex(t *testing.T) {
	// 2026-03-02 is a Monday.
	mon := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, mondayIndex(mon))
	assert.Equal(t, 6, mondayIndex(mon.AddDate(0, 0, 6)))

	start := gridStart(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Monday, start.Weekday())
	assert.False(t, start.After(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)))
}
