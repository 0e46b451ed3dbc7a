package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiona25/Sportello-Notai-sub001/internal/backend"
	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
	"github.com/axiona25/Sportello-Notai-sub001/internal/holiday"
	"github.com/axiona25/Sportello-Notai-sub001/internal/testutil"
)

func TestTUI_CalendarLoadsOnStartup(t *testing.T) {
	fb := testutil.NewFakeBackend()
	appt := testutil.NewAppointment(todayAt(10))
	fb.SetAppointments([]domain.Appointment{appt})

	d := NewTestDriver(t, testApp(t, fb, domain.RoleClient))

	assert.Equal(t, ViewCalendar, d.ActiveViewID())
	assert.Equal(t, 1, d.ViewStackLen())

	view := d.View()
	assert.NotContains(t, view, "Loading")
	assert.Contains(t, view, "Rogito")
}

func TestTUI_QuitWithQ(t *testing.T) {
	d := NewTestDriver(t, testApp(t, testutil.NewFakeBackend(), domain.RoleClient))

	d.PressKey('q')

	assert.True(t, d.IsQuitting())
}

func TestTUI_QuitWithCtrlC(t *testing.T) {
	d := NewTestDriver(t, testApp(t, testutil.NewFakeBackend(), domain.RoleClient))

	d.PressCtrlC()

	assert.True(t, d.IsQuitting())
}

func TestTUI_OpenNotificationsAndBack(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.SetNotifications([]domain.Notification{
		testutil.NewNotification(domain.NotifAppointmentConfirmed, ""),
	})

	d := NewTestDriver(t, testApp(t, fb, domain.RoleClient))

	d.PressKey('b')
	assert.Equal(t, ViewNotifications, d.ActiveViewID())
	assert.Contains(t, d.View(), "Appointment confirmed")

	d.PressEsc()
	assert.Equal(t, ViewCalendar, d.ActiveViewID())
}

func TestTUI_UnreadBadgeInHeader(t *testing.T) {
	fb := testutil.NewFakeBackend()
	appt := testutil.NewAppointment(todayAt(9))
	fb.SetAppointments([]domain.Appointment{appt})
	fb.SetNotifications([]domain.Notification{
		testutil.NewNotification(domain.NotifDocumentsRequired, appt.ID),
	})
	// An incomplete required document keeps the notification alive.
	fb.Documents[appt.ID] = []domain.Document{
		{ID: "doc-1", AppointmentID: appt.ID, Name: "Visura", Required: true},
	}

	d := NewTestDriver(t, testApp(t, fb, domain.RoleClient))

	// The startup sync already counted the unread notification.
	assert.Equal(t, 1, d.State().UnreadCount)
	assert.Contains(t, d.View(), "✉ 1")
}

func TestTUI_NotificationClickJumpsAndOpensDetail(t *testing.T) {
	fb := testutil.NewFakeBackend()
	appt := testutil.NewAppointment(todayAt(11))
	fb.SetAppointments([]domain.Appointment{appt})
	notif := testutil.NewNotification(domain.NotifDocumentsRequired, appt.ID)
	fb.SetNotifications([]domain.Notification{notif})
	fb.Documents[appt.ID] = []domain.Document{
		{ID: "doc-1", AppointmentID: appt.ID, Name: "Visura", Required: true},
	}

	d := NewTestDriver(t, testApp(t, fb, domain.RoleClient))

	d.PressKey('b')
	d.Pump()
	require.Contains(t, d.View(), "Documents required")

	// Click: mark read, collapse to the calendar, select the appointment.
	d.PressEnter()
	d.Pump()

	assert.Equal(t, ViewCalendar, d.ActiveViewID())
	cal := d.Calendar()
	assert.Equal(t, appt.ID, cal.selectedApptID)
	assert.True(t, d.State().Nav.Active())
	assert.Contains(t, fb.ReadNotificationIDs, notif.ID)

	// Documents-required persists for the client until resolved.
	assert.Empty(t, fb.DeletedNotifications)

	// After the settle stages a documents notification opens the detail view.
	d.Settle()
	assert.Equal(t, ViewDetail, d.ActiveViewID())
	assert.False(t, d.State().Nav.Active())
}

func TestTUI_NotificationJumpCrossesMonths(t *testing.T) {
	fb := testutil.NewFakeBackend()
	target := firstOfMonth(time.Now()).AddDate(0, 1, 3)
	appt := testutil.NewAppointment(target.Add(10 * time.Hour))
	fb.SetAppointments([]domain.Appointment{appt})
	notif := testutil.NewNotification(domain.NotifAppointmentConfirmed, appt.ID)
	fb.SetNotifications([]domain.Notification{notif})

	d := NewTestDriver(t, testApp(t, fb, domain.RoleClient))

	// The target lives outside the startup viewport.
	_, cached := d.State().App.Registry.Get(appt.ID)
	require.False(t, cached)

	d.PressKey('b')
	d.Pump()
	d.PressEnter()
	d.Pump()
	d.Settle()

	// The calendar fetched the target's date, flipped the month, reloaded
	// the viewport, and selected the appointment.
	cal := d.Calendar()
	assert.Equal(t, appt.Day(), cal.selected)
	assert.Equal(t, appt.ID, cal.selectedApptID)
	assert.Equal(t, ViewCalendar, d.ActiveViewID())
	assert.False(t, d.State().Nav.Active())
}

func TestTUI_JumpToMissingAppointmentDropsIntent(t *testing.T) {
	fb := testutil.NewFakeBackend()
	appt := testutil.NewAppointment(todayAt(11))
	fb.SetAppointments([]domain.Appointment{appt})
	notif := testutil.NewNotification(domain.NotifAppointmentConfirmed, "gone-id")
	fb.SetNotifications([]domain.Notification{notif})

	d := NewTestDriver(t, testApp(t, fb, domain.RoleClient))

	d.PressKey('b')
	d.Pump()
	d.PressEnter()
	d.Pump()

	// Target does not exist anywhere: the intent is consumed without a jump.
	assert.Equal(t, ViewCalendar, d.ActiveViewID())
	assert.False(t, d.State().Nav.Active())
	assert.Empty(t, d.Calendar().selectedApptID)
	assert.Contains(t, d.Flash(), "no longer exists")
}

func TestTUI_DateChangeClearsSelection(t *testing.T) {
	fb := testutil.NewFakeBackend()
	appt := testutil.NewAppointment(todayAt(10))
	fb.SetAppointments([]domain.Appointment{appt})

	d := NewTestDriver(t, testApp(t, fb, domain.RoleClient))

	// Select the appointment in the day list.
	d.PressTab()
	cal := d.Calendar()
	cal.syncSelection()
	require.Equal(t, appt.ID, cal.selectedApptID)

	// Moving to another date drops the sticky selection.
	d.PressTab()
	d.PressRight()
	assert.Empty(t, d.Calendar().selectedApptID)
}

func TestTUI_BookingWizardCreatesAppointment(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.ServiceTypes = []domain.ServiceType{
		{Code: "ROGITO", Name: "Rogito", DurationMin: 60},
	}

	// Put the bookable slot on the next business day.
	day := midnight(time.Now())
	steps := 0
	for holiday.IsExcluded(day) {
		day = day.AddDate(0, 0, 1)
		steps++
	}
	fb.Slots = []domain.Slot{testutil.NewSlot(day, 10, 0, 11, 0, true)}

	d := NewTestDriver(t, testApp(t, fb, domain.RoleClient))

	d.PressKey('n')
	require.Equal(t, ViewBooking, d.ActiveViewID())
	require.Contains(t, d.View(), "Rogito")

	// Service type
	d.PressEnter()
	// Walk to the business day, then pick the slot.
	for i := 0; i < steps; i++ {
		d.PressRight()
	}
	require.Contains(t, d.View(), "10:00–11:00")
	d.PressEnter()

	// Modes: toggle the first one and advance.
	d.PressSpace()
	d.PressEnter()

	// Confirm
	require.Contains(t, d.View(), "Press enter to submit")
	d.PressEnter()
	d.Pump()

	require.Len(t, fb.CreatedRequests, 1)
	req := fb.CreatedRequests[0]
	assert.Equal(t, "ROGITO", req.ServiceCode)
	assert.Equal(t, 60, req.DurationMin)
	assert.Equal(t, []domain.ServiceMode{domain.AllServiceModes[0]}, req.Modes)

	// Back on the calendar with a confirmation flash.
	assert.Equal(t, ViewCalendar, d.ActiveViewID())
	assert.Contains(t, d.Flash(), "booked")
}

func TestTUI_BookingGuardBlocksEmptyModes(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.ServiceTypes = []domain.ServiceType{
		{Code: "PROCURA", Name: "Procura", DurationMin: 30},
	}
	day := midnight(time.Now())
	steps := 0
	for holiday.IsExcluded(day) {
		day = day.AddDate(0, 0, 1)
		steps++
	}
	fb.Slots = []domain.Slot{testutil.NewSlot(day, 9, 0, 9, 30, true)}

	d := NewTestDriver(t, testApp(t, fb, domain.RoleClient))

	d.PressKey('n')
	d.PressEnter()
	for i := 0; i < steps; i++ {
		d.PressRight()
	}
	d.PressEnter()

	// No mode selected: forward is gated, the wizard stays on modes.
	d.PressEnter()
	assert.Contains(t, d.Flash(), "at least one service mode")
	assert.Equal(t, ViewBooking, d.ActiveViewID())
	assert.Empty(t, fb.CreatedRequests)
}

func TestTUI_NotaryConfirmsFromDetail(t *testing.T) {
	fb := testutil.NewFakeBackend()
	appt := testutil.NewAppointment(todayAt(15))
	fb.SetAppointments([]domain.Appointment{appt})

	d := NewTestDriver(t, testApp(t, fb, domain.RoleNotary))

	d.PressTab()
	d.PressEnter()
	require.Equal(t, ViewDetail, d.ActiveViewID())

	d.PressKey('c')
	require.Equal(t, ViewForm, d.ActiveViewID())

	d.Type("ok")
	d.PressEnter()
	d.Pump()

	assert.Contains(t, fb.ConfirmedIDs, appt.ID)
	assert.Equal(t, ViewDetail, d.ActiveViewID())
	assert.Contains(t, d.Flash(), "confirm ok")
}

func TestTUI_NotaryApprovesDocument(t *testing.T) {
	fb := testutil.NewFakeBackend()
	appt := testutil.NewAppointment(todayAt(15))
	fb.SetAppointments([]domain.Appointment{appt})
	fb.Documents[appt.ID] = []domain.Document{
		{ID: "doc-1", AppointmentID: appt.ID, Name: "Visura", Required: true, HasFile: true},
	}

	d := NewTestDriver(t, testApp(t, fb, domain.RoleNotary))

	d.PressTab()
	d.PressEnter()
	require.Equal(t, ViewDetail, d.ActiveViewID())

	d.PressKey('v')
	require.Equal(t, ViewForm, d.ActiveViewID())

	// The confirm dialog defaults to Yes.
	d.PressEnter()
	d.Pump()

	assert.Contains(t, fb.VerifiedDocuments, "doc-1")
	assert.Equal(t, ViewDetail, d.ActiveViewID())
}

func TestTUI_ConflictShowsDistinctWarning(t *testing.T) {
	fb := testutil.NewFakeBackend()
	appt := testutil.NewAppointment(todayAt(15))
	fb.SetAppointments([]domain.Appointment{appt})
	fb.ConfirmErr = backend.ErrAlreadyHandled

	d := NewTestDriver(t, testApp(t, fb, domain.RoleNotary))

	d.PressTab()
	d.PressEnter()
	d.PressKey('c')
	d.PressEnter() // empty note is allowed
	d.Pump()

	assert.Contains(t, d.Flash(), "already handled elsewhere")
}

func TestTUI_DeleteRequiresTypedConfirmation(t *testing.T) {
	fb := testutil.NewFakeBackend()
	appt := testutil.NewAppointment(todayAt(15))
	fb.SetAppointments([]domain.Appointment{appt})

	d := NewTestDriver(t, testApp(t, fb, domain.RoleNotary))

	d.PressTab()
	d.PressEnter()
	require.Equal(t, ViewDetail, d.ActiveViewID())

	d.PressKey('D')
	require.Equal(t, ViewForm, d.ActiveViewID())

	// Wrong word: the huh validator refuses to complete the form.
	d.Type("ELIMINO")
	d.PressEnter()
	assert.Equal(t, ViewForm, d.ActiveViewID())
	assert.Empty(t, fb.DeletedIDs)

	// Clear and type the exact confirmation word.
	for range "ELIMINO" {
		d.PressBackspace()
	}
	d.Type(deleteConfirmWord)
	d.PressEnter()
	d.Pump()

	assert.Contains(t, fb.DeletedIDs, appt.ID)
}

func TestTUI_MarkAllReadFromBell(t *testing.T) {
	fb := testutil.NewFakeBackend()
	appt := testutil.NewAppointment(todayAt(9))
	fb.SetAppointments([]domain.Appointment{appt})
	fb.SetNotifications([]domain.Notification{
		testutil.NewNotification(domain.NotifDocumentsRequired, appt.ID),
		testutil.NewNotification(domain.NotifAppointmentConfirmed, appt.ID),
	})
	fb.Documents[appt.ID] = []domain.Document{
		{ID: "doc-1", AppointmentID: appt.ID, Name: "Visura", Required: true},
	}

	d := NewTestDriver(t, testApp(t, fb, domain.RoleClient))

	d.PressKey('b')
	d.Pump()
	d.PressKey('a')
	d.Pump()

	assert.Equal(t, 1, fb.MarkAllReadCalls)
	assert.Equal(t, 0, d.State().UnreadCount)
}
