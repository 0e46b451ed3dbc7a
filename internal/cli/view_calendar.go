package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/axiona25/Sportello-Notai-sub001/internal/backend"
	"github.com/axiona25/Sportello-Notai-sub001/internal/cli/formatter"
	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
	"github.com/axiona25/Sportello-Notai-sub001/internal/holiday"
)

// apptsLoadedMsg signals that a viewport load finished. Loads race when
// the user flips months quickly; stale results carry an old seq and are
// discarded.
type apptsLoadedMsg struct {
	seq int
	err error
}

// jumpToAppointmentMsg tells the calendar to navigate to an appointment
// as part of a notification jump.
type jumpToAppointmentMsg struct {
	appointmentID string
	openDetail    bool
}

// calendarView is the home view: a month grid plus the selected day's
// appointment list.
type calendarView struct {
	state *SharedState

	month    time.Time // first day of the displayed month
	selected time.Time // selected date, midnight

	focusList  bool
	listCursor int
	dayAppts   []domain.Appointment

	selectedApptID string // sticky selection, cleared when the date changes
	highlightID    string // transient highlight after a notification jump

	loading bool
	err     error
	loadSeq int
}

func newCalendarView(state *SharedState) *calendarView {
	today := state.Today()
	return &calendarView{
		state:    state,
		month:    firstOfMonth(today),
		selected: today,
		loading:  true,
	}
}

func (v *calendarView) ID() ViewID    { return ViewCalendar }
func (v *calendarView) Title() string { return v.month.Format("January 2006") }

func (v *calendarView) ShortHelp() []key.Binding {
	hints := []key.Binding{
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "grid/list")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	}
	if !v.state.IsNotary() {
		hints = append(hints, key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "book")))
	}
	hints = append(hints,
		key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "notifications")),
		key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	)
	return hints
}

func (v *calendarView) Init() tea.Cmd {
	return v.reload()
}

// reload narrows the registry viewport to the visible month and loads it.
func (v *calendarView) reload() tea.Cmd {
	v.loading = true
	v.loadSeq++
	seq := v.loadSeq
	app := v.state.App
	filters := v.viewportFilters()
	return func() tea.Msg {
		app.Registry.SetViewport(filters)
		err := app.Registry.Load(context.Background())
		return apptsLoadedMsg{seq: seq, err: err}
	}
}

func (v *calendarView) viewportFilters() backend.AppointmentFilters {
	cfg := v.state.App.Cfg
	f := backend.AppointmentFilters{
		From: v.month,
		To:   v.month.AddDate(0, 1, 0),
	}
	if v.state.IsNotary() {
		f.NotaryID = cfg.ActorID
	} else {
		f.ClientID = cfg.ActorID
		f.NotaryID = cfg.NotaryID
	}
	return f
}

func (v *calendarView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case apptsLoadedMsg:
		if msg.seq != v.loadSeq {
			return v, nil
		}
		v.loading = false
		v.err = msg.err
		v.recomputeDay()
		if v.err == nil && v.state.Nav.Active() {
			return v, v.resolveJump()
		}
		return v, nil

	case refreshViewMsg:
		// Registry cache changed underneath us; re-read, no fetch.
		v.recomputeDay()
		return v, nil

	case jumpToAppointmentMsg:
		return v, v.beginJump(msg)

	case jumpDateMsg:
		if !v.state.Nav.Current(msg.seq) {
			return v, nil
		}
		if cmd := v.setSelected(msg.day); cmd != nil {
			return v, cmd // viewport reload in flight, resolveJump runs on load
		}
		return v, v.resolveJump()

	case jumpFailedMsg:
		nav := v.state.Nav
		if !nav.Current(msg.seq) {
			return v, nil
		}
		nav.Finish()
		v.highlightID = ""
		return v, flash("appointment no longer exists")

	case navSettleMsg:
		return v, v.advanceJump(msg)

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *calendarView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		v.focusList = !v.focusList
		return v, nil

	case "t":
		return v, v.setSelected(v.state.Today())

	case "r":
		return v, v.reload()

	case "b":
		return v, pushView(newNotificationsView(v.state))

	case "n":
		if v.state.IsNotary() {
			return v, nil
		}
		day := v.selected
		return v, pushView(newBookingView(v.state, &day))

	case "[", "pgup":
		return v, v.setSelected(v.selected.AddDate(0, -1, 0))

	case "]", "pgdown":
		return v, v.setSelected(v.selected.AddDate(0, 1, 0))
	}

	if v.focusList {
		return v.handleListKey(msg)
	}
	return v.handleGridKey(msg)
}

func (v *calendarView) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		return v, v.setSelected(v.selected.AddDate(0, 0, -1))
	case "right", "l":
		return v, v.setSelected(v.selected.AddDate(0, 0, 1))
	case "up", "k":
		return v, v.setSelected(v.selected.AddDate(0, 0, -7))
	case "down", "j":
		return v, v.setSelected(v.selected.AddDate(0, 0, 7))
	case "enter":
		if len(v.dayAppts) > 0 {
			v.focusList = true
		}
	}
	return v, nil
}

func (v *calendarView) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.listCursor > 0 {
			v.listCursor--
		}
		v.syncSelection()
	case "down", "j":
		if v.listCursor < len(v.dayAppts)-1 {
			v.listCursor++
		}
		v.syncSelection()
	case "enter":
		if v.listCursor < len(v.dayAppts) {
			a := v.dayAppts[v.listCursor]
			return v, pushView(newDetailView(v.state, a.ID))
		}
	}
	return v, nil
}

// setSelected moves the selected date. A move that leaves the visible
// month reloads the viewport. Outside a notification jump, changing the
// date drops the sticky appointment selection.
func (v *calendarView) setSelected(day time.Time) tea.Cmd {
	day = midnight(day)
	changed := !day.Equal(v.selected)
	v.selected = day

	if changed && !v.state.Nav.Active() {
		v.selectedApptID = ""
		v.highlightID = ""
		v.listCursor = 0
	}

	if m := firstOfMonth(day); !m.Equal(v.month) {
		v.month = m
		return v.reload()
	}
	v.recomputeDay()
	return nil
}

// recomputeDay re-reads the selected day's rows from the registry cache
// and keeps cursor and sticky selection consistent with them.
func (v *calendarView) recomputeDay() {
	v.dayAppts = v.state.App.Registry.ForDay(v.selected)
	if v.listCursor >= len(v.dayAppts) {
		v.listCursor = 0
	}
	if v.selectedApptID != "" {
		for i, a := range v.dayAppts {
			if a.ID == v.selectedApptID {
				v.listCursor = i
				return
			}
		}
		if !v.state.Nav.Active() {
			v.selectedApptID = ""
		}
	}
}

func (v *calendarView) syncSelection() {
	if v.listCursor < len(v.dayAppts) {
		v.selectedApptID = v.dayAppts[v.listCursor].ID
	}
}

// ── notification jump ───────────────────────────────────────────────────────

// beginJump moves the calendar to the target appointment's date. When the
// target is not cached yet (other month, or evicted) the viewport reload
// triggered by the date move re-resolves it in apptsLoadedMsg.
func (v *calendarView) beginJump(msg jumpToAppointmentMsg) tea.Cmd {
	nav := v.state.Nav
	nav.Begin(msg.appointmentID, msg.openDetail)

	if a, ok := v.state.App.Registry.Get(msg.appointmentID); ok {
		cmd := v.setSelected(a.Day())
		if cmd != nil {
			return cmd // reload in flight, resolveJump runs on load
		}
		return v.resolveJump()
	}

	// Not cached: fall back to a direct fetch to learn the date.
	app := v.state.App
	id := msg.appointmentID
	seq := nav.seq
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.RequestTimeout)
		defer cancel()
		a, err := app.Backend.GetAppointment(ctx, id)
		if err != nil {
			return jumpFailedMsg{seq: seq}
		}
		return jumpDateMsg{seq: seq, day: a.Day()}
	}
}

// jumpDateMsg carries the fetched date of a jump target that was not in
// the cache. Messages from a superseded jump carry an old seq and are
// ignored.
type jumpDateMsg struct {
	seq int
	day time.Time
}

// jumpFailedMsg reports that a jump target could not be fetched; the
// intent is dropped.
type jumpFailedMsg struct{ seq int }

// resolveJump runs once the registry holds the viewport the target
// should live in: select and highlight it, or drop the intent.
func (v *calendarView) resolveJump() tea.Cmd {
	nav := v.state.Nav
	if !nav.Active() {
		return nil
	}
	target := nav.Target()
	v.recomputeDay()
	for i, a := range v.dayAppts {
		if a.ID == target {
			v.listCursor = i
			v.selectedApptID = target
			v.highlightID = target
			v.focusList = true
			return nav.settleCmd(1)
		}
	}
	nav.Finish()
	v.highlightID = ""
	return flash("appointment no longer exists")
}

// advanceJump steps the in-flight jump through its settle stages.
func (v *calendarView) advanceJump(msg navSettleMsg) tea.Cmd {
	nav := v.state.Nav
	if !nav.Current(msg.seq) {
		return nil
	}
	switch msg.stage {
	case 1:
		return nav.settleCmd(2)
	case 2:
		openDetail := nav.OpenDetail()
		target := nav.Target()
		nav.Finish()
		v.highlightID = ""
		if openDetail {
			return pushView(newDetailView(v.state, target))
		}
	}
	return nil
}

// ── rendering ───────────────────────────────────────────────────────────────

func (v *calendarView) View() string {
	if v.loading {
		return "\n  " + formatter.Dim("Loading appointments...")
	}
	if v.err != nil {
		return "\n  " + formatter.StyleRed.Render("Error: "+v.err.Error())
	}

	grid := v.renderGrid()
	list := v.renderDayList()
	return "\n" + grid + "\n" + list
}

func (v *calendarView) renderGrid() string {
	var b strings.Builder

	title := v.month.Format("January 2006")
	if v.focusList {
		b.WriteString("  " + formatter.Dim(title) + "\n")
	} else {
		b.WriteString("  " + formatter.StyleHeader.Render(title) + "\n")
	}
	b.WriteString("  " + formatter.Dim("Mo Tu We Th Fr Sa Su") + "\n")

	counts := v.monthCounts()
	today := v.state.Today()

	day := gridStart(v.month)
	end := v.month.AddDate(0, 1, 0)
	for day.Before(end) || mondayIndex(day) != 0 {
		if mondayIndex(day) == 0 {
			b.WriteString("  ")
		}
		b.WriteString(v.renderDayCell(day, counts, today))
		if mondayIndex(day) == 6 {
			b.WriteString("\n")
		}
		day = day.AddDate(0, 0, 1)
		if !day.Before(end) && mondayIndex(day) == 0 {
			break
		}
	}
	return b.String()
}

func (v *calendarView) renderDayCell(day time.Time, counts map[string]int, today time.Time) string {
	label := fmt.Sprintf("%2d", day.Day())

	switch {
	case day.Month() != v.month.Month():
		return formatter.Dim(label) + " "
	case day.Equal(v.selected):
		return formatter.StyleHighlight.Render(label) + " "
	case day.Equal(today):
		return formatter.StyleHeader.Render(label) + " "
	case counts[dayKey(day)] > 0:
		return formatter.StyleGreen.Render(label) + "•"
	case holiday.IsExcluded(day):
		return formatter.Dim(label) + " "
	default:
		return formatter.StyleFg.Render(label) + " "
	}
}

func (v *calendarView) monthCounts() map[string]int {
	counts := make(map[string]int)
	for _, a := range v.state.App.Registry.Appointments() {
		counts[dayKey(a.Day())]++
	}
	return counts
}

func (v *calendarView) renderDayList() string {
	var b strings.Builder
	heading := v.selected.Format("Monday 2 January")
	if v.focusList {
		b.WriteString("  " + formatter.StyleHeader.Render(heading) + "\n")
	} else {
		b.WriteString("  " + formatter.StyleBold.Render(heading) + "\n")
	}

	if len(v.dayAppts) == 0 {
		b.WriteString("  " + formatter.Dim("No appointments.") + "\n")
		return b.String()
	}

	for i, a := range v.dayAppts {
		cursor := "  "
		if v.focusList && i == v.listCursor {
			cursor = formatter.StyleGreen.Render("▸ ")
		}
		line := fmt.Sprintf("%s%s–%s  %s  %s",
			cursor,
			a.Start.Format("15:04"), a.End.Format("15:04"),
			formatter.StatusLabel(a.Status),
			appointmentLabel(a, v.state.IsNotary()),
		)
		if a.ID == v.highlightID {
			line = formatter.StyleHighlight.Render(stripForHighlight(a, v.state.IsNotary()))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// stripForHighlight renders the same row content unstyled so the
// highlight background covers the full line.
func stripForHighlight(a domain.Appointment, notary bool) string {
	return fmt.Sprintf("▸ %s–%s  %s  %s",
		a.Start.Format("15:04"), a.End.Format("15:04"),
		a.Status, appointmentLabel(a, notary))
}

// appointmentLabel is the service plus the counterpart's name.
func appointmentLabel(a domain.Appointment, notary bool) string {
	svc := a.ServiceName
	if svc == "" {
		svc = a.ServiceCode
	}
	who := a.NotaryName
	if notary {
		who = a.ClientName
	}
	if who == "" {
		return svc
	}
	return svc + " " + formatter.Dim("· "+who)
}

// ── date helpers ────────────────────────────────────────────────────────────

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func firstOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// gridStart returns the Monday on or before the first of the month.
func gridStart(month time.Time) time.Time {
	return month.AddDate(0, 0, -mondayIndex(month))
}

// mondayIndex maps a weekday to 0..6 with Monday first.
func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
