package cli

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/axiona25/Sportello-Notai-sub001/internal/availability"
	"github.com/axiona25/Sportello-Notai-sub001/internal/bus"
	"github.com/axiona25/Sportello-Notai-sub001/internal/config"
	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
	"github.com/axiona25/Sportello-Notai-sub001/internal/notify"
	"github.com/axiona25/Sportello-Notai-sub001/internal/registry"
	"github.com/axiona25/Sportello-Notai-sub001/internal/teatest"
	"github.com/axiona25/Sportello-Notai-sub001/internal/testutil"
)

// testApp builds an App wired to a fake backend, with the reconciler in
// synchronous mode (no debounce, immediate deletes).
func testApp(t *testing.T, fb *testutil.FakeBackend, role domain.Role) *App {
	t.Helper()

	log := zap.NewNop()
	eb := bus.New()
	reg := registry.New(fb, eb, log)
	rec := notify.New(fb, reg, eb, notify.Config{Role: role}, log)

	cfg := config.Default()
	cfg.Role = role
	if role == domain.RoleNotary {
		cfg.ActorID = "notary-1"
	}

	return &App{
		Cfg:           cfg,
		Log:           log,
		Backend:       fb,
		Bus:           eb,
		Registry:      reg,
		Notifications: rec,
		Slots:         availability.New(fb),
	}
}

// TestDriver wraps teatest.Driver with app-specific inspection methods
// and a synchronous bus bridge: engine events published during command
// execution are queued and pumped back into the model, standing in for
// the program.Send bridge of the real runtime.
type TestDriver struct {
	*teatest.Driver

	mu     sync.Mutex
	queued []bus.Event
}

// NewTestDriver creates a TestDriver from a test App. It constructs the
// appModel, sets terminal size, drains Init() (which loads the calendar
// synchronously from the fake backend), and pumps the resulting events.
func NewTestDriver(t *testing.T, app *App) *TestDriver {
	t.Helper()

	d := &TestDriver{}
	app.Bus.Subscribe(func(e bus.Event) {
		d.mu.Lock()
		d.queued = append(d.queued, e)
		d.mu.Unlock()
	})

	m := newAppModel(app)
	d.Driver = teatest.New(t, m, teatest.WithSize(100, 35))
	d.DrainInit()
	d.Pump()

	return d
}

// Pump delivers queued bus events into the model until none remain.
func (d *TestDriver) Pump() {
	d.T.Helper()
	for {
		d.mu.Lock()
		if len(d.queued) == 0 {
			d.mu.Unlock()
			return
		}
		e := d.queued[0]
		d.queued = d.queued[1:]
		d.mu.Unlock()
		d.Send(busEventMsg{event: e})
	}
}

// ── app-specific inspection ─────────────────────────────────────────────────

func (d *TestDriver) appModel() appModel {
	return d.Model.(appModel)
}

// ActiveViewID returns the ViewID of the top view on the stack.
func (d *TestDriver) ActiveViewID() ViewID {
	m := d.appModel()
	v := m.activeView()
	if v == nil {
		return ViewID(-1)
	}
	return v.ID()
}

// ViewStackLen returns the number of views on the stack.
func (d *TestDriver) ViewStackLen() int {
	return len(d.appModel().viewStack)
}

// State returns the shared state for inspection.
func (d *TestDriver) State() *SharedState {
	return d.appModel().state
}

// Calendar returns the root calendar view.
func (d *TestDriver) Calendar() *calendarView {
	return d.appModel().viewStack[0].(*calendarView)
}

// Flash returns the current transient status message.
func (d *TestDriver) Flash() string {
	return d.appModel().flashText
}

// IsQuitting returns whether the app has signaled a quit.
func (d *TestDriver) IsQuitting() bool {
	return d.appModel().quitting || d.Quitting
}

// Settle walks the in-flight notification jump through both settle
// stages, standing in for the tea.Tick timers the driver skips.
func (d *TestDriver) Settle() {
	d.T.Helper()
	seq := d.State().Nav.seq
	d.Send(navSettleMsg{seq: seq, stage: 1})
	d.Send(navSettleMsg{seq: seq, stage: 2})
	d.Pump()
}

// todayAt returns today's local date at the given hour.
func todayAt(hh int) time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), hh, 0, 0, 0, now.Location())
}
