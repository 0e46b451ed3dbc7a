package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiona25/Sportello-Notai-sub001/internal/bus"
	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
	"github.com/axiona25/Sportello-Notai-sub001/internal/registry"
	"github.com/axiona25/Sportello-Notai-sub001/internal/testutil"
)

type fixture struct {
	fb  *testutil.FakeBackend
	eb  *bus.Bus
	reg *registry.Registry
	rec *Reconciler
}

func newFixture(t *testing.T, role domain.Role) *fixture {
	t.Helper()
	fb := testutil.NewFakeBackend()
	eb := bus.New()
	reg := registry.New(fb, eb, nil)
	rec := New(fb, reg, eb, Config{Role: role}, nil)
	return &fixture{fb: fb, eb: eb, reg: reg, rec: rec}
}

func (f *fixture) loadAll(t *testing.T) {
	t.Helper()
	require.NoError(t, f.reg.Load(context.Background()))
	require.NoError(t, f.rec.RefreshNotifications(context.Background()))
}

func TestDocumentApprovedIsSingleUse(t *testing.T) {
	f := newFixture(t, domain.RoleClient)
	n := testutil.NewNotification(domain.NotifDocumentApproved, "apt-1")
	f.fb.Notifications = []domain.Notification{n}

	f.loadAll(t)

	assert.Empty(t, f.rec.Notifications())
	assert.Contains(t, f.fb.DeletedNotifications, n.ID)
}

func TestDocumentsRequiredSurvivesUntilComplete(t *testing.T) {
	f := newFixture(t, domain.RoleClient)
	n := testutil.NewNotification(domain.NotifDocumentsRequired, "apt-1")
	f.fb.Notifications = []domain.Notification{n}
	f.fb.Documents["apt-1"] = []domain.Document{
		{ID: "d1", Required: true, HasFile: true},
		{ID: "d2", Required: true, HasFile: true},
		{ID: "d3", Required: true, HasFile: false},
	}

	f.loadAll(t)
	require.Len(t, f.rec.Notifications(), 1, "2 of 3 uploaded: must remain")

	// Third document uploaded; next pass deletes it.
	f.fb.Documents["apt-1"][2].HasFile = true
	f.rec.Trigger()

	assert.Empty(t, f.rec.Notifications())
	assert.Contains(t, f.fb.DeletedNotifications, n.ID)
}

func TestAppointmentRequestedDeletedAfterConcurrentConfirm(t *testing.T) {
	f := newFixture(t, domain.RoleNotary)
	day := testutil.Day(2026, time.March, 10)
	apt := testutil.NewAppointment(testutil.At(day, 9, 0))
	f.fb.Appointments = []domain.Appointment{apt}
	n := testutil.NewNotification(domain.NotifAppointmentRequested, apt.ID)
	f.fb.Notifications = []domain.Notification{n}

	f.loadAll(t)
	require.Len(t, f.rec.Notifications(), 1, "provisional: notification stays")

	// Status flips via a concurrent refresh; the notification was never
	// clicked but the next pass must still delete it.
	apt.Status = domain.StatusConfirmed
	f.fb.SetAppointments([]domain.Appointment{apt})
	f.rec.Start()
	defer f.rec.Stop()
	require.NoError(t, f.reg.Refresh(context.Background()))

	assert.Empty(t, f.rec.Notifications())
	assert.Contains(t, f.fb.DeletedNotifications, n.ID)
}

func TestAppointmentConfirmedObsoleteOnceActedOn(t *testing.T) {
	f := newFixture(t, domain.RoleClient)
	day := testutil.Day(2026, time.March, 10)
	apt := testutil.NewAppointment(testutil.At(day, 9, 0), testutil.WithStatus(domain.StatusConfirmed))
	f.fb.Appointments = []domain.Appointment{apt}
	n := testutil.NewNotification(domain.NotifAppointmentConfirmed, apt.ID)
	f.fb.Notifications = []domain.Notification{n}

	f.loadAll(t)
	assert.Empty(t, f.rec.Notifications())
}

func TestAppointmentConfirmedSurvivesWhileProvisional(t *testing.T) {
	f := newFixture(t, domain.RoleClient)
	day := testutil.Day(2026, time.March, 10)
	apt := testutil.NewAppointment(testutil.At(day, 9, 0))
	f.fb.Appointments = []domain.Appointment{apt}
	f.fb.Notifications = []domain.Notification{
		testutil.NewNotification(domain.NotifAppointmentConfirmed, apt.ID),
	}

	f.loadAll(t)
	assert.Len(t, f.rec.Notifications(), 1)
}

func TestDeletionFailureDoesNotAbortPass(t *testing.T) {
	f := newFixture(t, domain.RoleClient)
	n1 := testutil.NewNotification(domain.NotifDocumentApproved, "apt-1")
	n2 := testutil.NewNotification(domain.NotifDocumentRejected, "apt-2")
	f.fb.Notifications = []domain.Notification{n1, n2}
	f.fb.DeleteNotifErrs[n1.ID] = errors.New("backend hiccup")

	f.loadAll(t)

	// n2 deleted despite n1's failure; n1 retained for a later retry.
	assert.Contains(t, f.fb.DeletedNotifications, n2.ID)
	live := f.rec.Notifications()
	require.Len(t, live, 1)
	assert.Equal(t, n1.ID, live[0].ID)
}

func TestUnreadCountFromSurvivors(t *testing.T) {
	f := newFixture(t, domain.RoleNotary)
	day := testutil.Day(2026, time.March, 10)
	apt := testutil.NewAppointment(testutil.At(day, 9, 0))
	f.fb.Appointments = []domain.Appointment{apt}

	unread := testutil.NewNotification(domain.NotifAppointmentRequested, apt.ID)
	read := testutil.NewNotification(domain.NotifAppointmentRequested, apt.ID)
	read.Read = true
	obsolete := testutil.NewNotification(domain.NotifDocumentApproved, apt.ID)
	f.fb.Notifications = []domain.Notification{unread, read, obsolete}

	f.loadAll(t)
	assert.Equal(t, 1, f.rec.UnreadCount())
}

func TestClickMarksReadAndEmitsIntent(t *testing.T) {
	f := newFixture(t, domain.RoleClient)
	day := testutil.Day(2026, time.March, 10)
	apt := testutil.NewAppointment(testutil.At(day, 9, 0))
	f.fb.Appointments = []domain.Appointment{apt}
	n := testutil.NewNotification(domain.NotifDocumentsRequired, apt.ID)
	f.fb.Notifications = []domain.Notification{n}
	f.fb.Documents[apt.ID] = []domain.Document{{ID: "d1", Required: true}}

	f.loadAll(t)

	var intents []bus.SelectAppointment
	f.eb.Subscribe(func(e bus.Event) {
		if sel, ok := e.(bus.SelectAppointment); ok {
			intents = append(intents, sel)
		}
	})

	f.rec.Click(context.Background(), n.ID)

	assert.Contains(t, f.fb.ReadNotificationIDs, n.ID)
	require.Len(t, intents, 1)
	assert.Equal(t, apt.ID, intents[0].AppointmentID)
	assert.True(t, intents[0].OpenDetail, "document-lifecycle click opens the verification view")

	// documents-required persists for clients: no delete scheduled.
	assert.NotContains(t, f.fb.DeletedNotifications, n.ID)
	assert.Len(t, f.rec.Notifications(), 1)
}

func TestClickDeletesNonPersistentType(t *testing.T) {
	f := newFixture(t, domain.RoleClient)
	day := testutil.Day(2026, time.March, 10)
	apt := testutil.NewAppointment(testutil.At(day, 9, 0))
	f.fb.Appointments = []domain.Appointment{apt}
	n := testutil.NewNotification(domain.NotifAppointmentConfirmed, apt.ID)
	f.fb.Notifications = []domain.Notification{n}

	f.loadAll(t)
	require.Len(t, f.rec.Notifications(), 1)

	var intents []bus.SelectAppointment
	f.eb.Subscribe(func(e bus.Event) {
		if sel, ok := e.(bus.SelectAppointment); ok {
			intents = append(intents, sel)
		}
	})

	f.rec.Click(context.Background(), n.ID)

	assert.Contains(t, f.fb.DeletedNotifications, n.ID)
	require.Len(t, intents, 1)
	assert.False(t, intents[0].OpenDetail, "plain appointment notifications never open the detail view")
}

func TestClickDeleteWaitsConfiguredDelay(t *testing.T) {
	fb := testutil.NewFakeBackend()
	eb := bus.New()
	reg := registry.New(fb, eb, nil)
	rec := New(fb, reg, eb, Config{Role: domain.RoleClient, DeleteDelay: 30 * time.Millisecond}, nil)

	day := testutil.Day(2026, time.March, 10)
	apt := testutil.NewAppointment(testutil.At(day, 9, 0))
	fb.Appointments = []domain.Appointment{apt}
	n := testutil.NewNotification(domain.NotifAppointmentConfirmed, apt.ID)
	fb.Notifications = []domain.Notification{n}

	require.NoError(t, reg.Load(context.Background()))
	require.NoError(t, rec.RefreshNotifications(context.Background()))
	require.Len(t, rec.Notifications(), 1)

	rec.Click(context.Background(), n.ID)

	// The clicked notification stays visible for the configured delay.
	assert.NotContains(t, fb.DeletedNotifications, n.ID)
	assert.Len(t, rec.Notifications(), 1)

	time.Sleep(150 * time.Millisecond)
	assert.Contains(t, fb.DeletedNotifications, n.ID)
	assert.Empty(t, rec.Notifications())
}

func TestClickAlreadyReadSkipsMarkRead(t *testing.T) {
	f := newFixture(t, domain.RoleNotary)
	day := testutil.Day(2026, time.March, 10)
	apt := testutil.NewAppointment(testutil.At(day, 9, 0))
	f.fb.Appointments = []domain.Appointment{apt}
	n := testutil.NewNotification(domain.NotifAppointmentRequested, apt.ID)
	n.Read = true
	f.fb.Notifications = []domain.Notification{n}

	f.loadAll(t)
	f.rec.Click(context.Background(), n.ID)

	assert.Empty(t, f.fb.ReadNotificationIDs)
}

func TestDebouncedTriggerCollapsesBursts(t *testing.T) {
	fb := testutil.NewFakeBackend()
	eb := bus.New()
	reg := registry.New(fb, eb, nil)
	rec := New(fb, reg, eb, Config{Role: domain.RoleClient, Debounce: 30 * time.Millisecond}, nil)

	n := testutil.NewNotification(domain.NotifDocumentApproved, "apt-1")
	fb.Notifications = []domain.Notification{n}
	require.NoError(t, rec.RefreshNotifications(context.Background()))

	rec.Trigger()
	rec.Trigger()
	rec.Trigger()

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, rec.Notifications())
	assert.Contains(t, fb.DeletedNotifications, n.ID)
}

func TestRefreshFailureKeepsCurrentSet(t *testing.T) {
	f := newFixture(t, domain.RoleClient)
	day := testutil.Day(2026, time.March, 10)
	apt := testutil.NewAppointment(testutil.At(day, 9, 0))
	f.fb.Appointments = []domain.Appointment{apt}
	f.fb.Notifications = []domain.Notification{
		testutil.NewNotification(domain.NotifAppointmentConfirmed, apt.ID),
	}
	f.loadAll(t)
	require.Len(t, f.rec.Notifications(), 1)

	f.fb.NotificationsErr = errors.New("offline")
	assert.Error(t, f.rec.RefreshNotifications(context.Background()))
	assert.Len(t, f.rec.Notifications(), 1)
}
