package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/axiona25/Sportello-Notai-sub001/internal/availability"
	"github.com/axiona25/Sportello-Notai-sub001/internal/booking"
	"github.com/axiona25/Sportello-Notai-sub001/internal/cli/formatter"
	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
)

// catalogLoadedMsg signals the service directory finished loading.
type catalogLoadedMsg struct {
	catalog *booking.Catalog
	err     error
}

// slotsLoadedMsg carries the computed slots for one day. Day flips race;
// stale results carry an old seq and are discarded.
type slotsLoadedMsg struct {
	seq   int
	slots []domain.Slot
	err   error
}

// bookedMsg signals the final submission outcome.
type bookedMsg struct {
	appt *domain.Appointment
	err  error
}

// bookingView drives the reservation wizard. With a reschedule target it
// skips type selection and moves the existing appointment instead of
// creating a new one.
type bookingView struct {
	state   *SharedState
	wiz     *booking.Wizard
	catalog *booking.Catalog
	resched *domain.Appointment

	day        time.Time
	slots      []domain.Slot
	slotCursor int
	typeCursor int
	modeCursor int

	slotSeq      int
	loadingSlots bool
	submitting   bool
	err          error
}

func newBookingView(state *SharedState, day *time.Time) *bookingView {
	cfg := state.App.Cfg
	v := &bookingView{
		state:   state,
		wiz:     booking.NewWizard(state.App.Backend, cfg.NotaryID, cfg.NotaryName, cfg.ActorID),
		catalog: state.App.Catalog(),
	}
	if day != nil {
		v.day = midnight(*day)
	} else {
		v.day = state.Today()
	}
	return v
}

// newRescheduleView builds a booking view that moves an existing
// appointment to a new slot.
func newRescheduleView(state *SharedState, appt domain.Appointment) *bookingView {
	v := newBookingView(state, nil)
	v.resched = &appt
	v.day = appt.Day()

	svc := domain.ServiceType{
		Code:        appt.ServiceCode,
		Name:        appt.ServiceName,
		DurationMin: appt.DurationMinutes(),
	}
	if v.catalog != nil {
		if known, ok := v.catalog.FindByCode(appt.ServiceCode); ok {
			svc = known
		}
	}
	v.wiz.SelectService(svc)
	_ = v.wiz.Next() // advance to slot selection
	return v
}

func (v *bookingView) ID() ViewID { return ViewBooking }
func (v *bookingView) Title() string {
	if v.resched != nil {
		return "Reschedule"
	}
	return "New appointment"
}

func (v *bookingView) ShortHelp() []key.Binding {
	hints := []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	}
	switch v.wiz.Step() {
	case booking.StepSelectType:
		hints = append(hints, key.NewBinding(key.WithKeys("["), key.WithHelp("[ ]", "page")))
	case booking.StepSelectSlot:
		hints = append(hints, key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "day")))
	case booking.StepSelectModes:
		hints = append(hints, key.NewBinding(key.WithKeys("space"), key.WithHelp("space", "toggle")))
	case booking.StepConfirm:
		hints = append(hints, key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "notes")))
	}
	hints = append(hints,
		key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "back step")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "abandon")),
	)
	return hints
}

func (v *bookingView) Init() tea.Cmd {
	if v.resched != nil {
		return v.loadSlots()
	}
	if v.catalog == nil {
		return v.loadCatalog()
	}
	return nil
}

func (v *bookingView) loadCatalog() tea.Cmd {
	app := v.state.App
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.RequestTimeout)
		defer cancel()
		c, err := booking.LoadCatalog(ctx, app.Backend)
		if err == nil {
			app.SetCatalog(c)
		}
		return catalogLoadedMsg{catalog: c, err: err}
	}
}

func (v *bookingView) loadSlots() tea.Cmd {
	svc := v.wiz.Draft().Service
	if svc == nil {
		return nil
	}
	v.loadingSlots = true
	v.slotSeq++
	seq := v.slotSeq
	day := v.day
	req := availability.Request{
		NotaryID:     v.wiz.NotaryID(),
		RangeStart:   day,
		RangeEnd:     day.AddDate(0, 0, 1),
		Service:      *svc,
		SelectedDate: &day,
	}
	if v.resched != nil {
		req.NotaryID = v.resched.NotaryID
		req.ExcludeAppointmentID = v.resched.ID
	}
	app := v.state.App
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.RequestTimeout)
		defer cancel()
		slots, err := app.Slots.ComputeSlots(ctx, req)
		return slotsLoadedMsg{seq: seq, slots: slots, err: err}
	}
}

func (v *bookingView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogLoadedMsg:
		if msg.err != nil {
			v.err = msg.err
			return v, nil
		}
		v.catalog = msg.catalog
		return v, nil

	case slotsLoadedMsg:
		if msg.seq != v.slotSeq {
			return v, nil
		}
		v.loadingSlots = false
		v.err = msg.err
		v.slots = msg.slots
		v.slotCursor = 0
		return v, nil

	case bookedMsg:
		v.submitting = false
		if msg.err != nil {
			// Draft is intact; stay on Confirm so the user can retry.
			return v, flashError("booking failed: " + msg.err.Error())
		}
		verb := "rescheduled"
		if v.resched == nil {
			verb = fmt.Sprintf("booked, status %s", msg.appt.Status)
		}
		return v, tea.Batch(popView(), flash(verb), refreshViews())

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *bookingView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.submitting {
		return v, nil
	}
	if msg.String() == "B" {
		return v, v.stepBack()
	}
	switch v.wiz.Step() {
	case booking.StepSelectType:
		return v.handleTypeKey(msg)
	case booking.StepSelectSlot:
		return v.handleSlotKey(msg)
	case booking.StepSelectModes:
		return v.handleModesKey(msg)
	case booking.StepConfirm:
		return v.handleConfirmKey(msg)
	}
	return v, nil
}

// stepBack moves the wizard backward. Backing out of the first step
// (or out of slot selection in reschedule mode) abandons the wizard.
func (v *bookingView) stepBack() tea.Cmd {
	first := v.wiz.Step() == booking.StepSelectType ||
		(v.resched != nil && v.wiz.Step() == booking.StepSelectSlot)
	if first {
		return popView()
	}
	v.wiz.Back()
	if v.wiz.Step() == booking.StepSelectSlot {
		return v.loadSlots()
	}
	return nil
}

func (v *bookingView) handleTypeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.catalog == nil {
		return v, nil
	}
	page := v.catalog.Page()
	switch msg.String() {
	case "up", "k":
		if v.typeCursor > 0 {
			v.typeCursor--
		}
	case "down", "j":
		if v.typeCursor < len(page)-1 {
			v.typeCursor++
		}
	case "[", "left":
		v.catalog.PrevPage()
		v.typeCursor = 0
	case "]", "right":
		v.catalog.NextPage()
		v.typeCursor = 0
	case "enter":
		if v.typeCursor < len(page) {
			v.wiz.SelectService(page[v.typeCursor])
			if err := v.wiz.Next(); err != nil {
				return v, flashError(err.Error())
			}
			return v, v.loadSlots()
		}
	}
	return v, nil
}

func (v *bookingView) handleSlotKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.slotCursor > 0 {
			v.slotCursor--
		}
	case "down", "j":
		if v.slotCursor < len(v.slots)-1 {
			v.slotCursor++
		}
	case "left", "h":
		v.day = v.day.AddDate(0, 0, -1)
		return v, v.loadSlots()
	case "right", "l":
		v.day = v.day.AddDate(0, 0, 1)
		return v, v.loadSlots()
	case "enter":
		if v.slotCursor >= len(v.slots) {
			return v, nil
		}
		slot := v.slots[v.slotCursor]
		if !slot.Available {
			return v, flashError("that interval is occupied")
		}
		v.wiz.SelectSlot(slot)
		if err := v.wiz.Next(); err != nil {
			return v, flashError(err.Error())
		}
		if v.resched != nil {
			// Reschedule keeps the original modes; jump to confirm.
			for _, m := range v.resched.Modes {
				v.wiz.ToggleMode(m)
			}
			if err := v.wiz.Next(); err != nil {
				return v, flashError(err.Error())
			}
		}
	}
	return v, nil
}

func (v *bookingView) handleModesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	modes := domain.AllServiceModes
	switch msg.String() {
	case "up", "k":
		if v.modeCursor > 0 {
			v.modeCursor--
		}
	case "down", "j":
		if v.modeCursor < len(modes)-1 {
			v.modeCursor++
		}
	case " ", "x":
		v.wiz.ToggleMode(modes[v.modeCursor])
	case "enter":
		if err := v.wiz.Next(); err != nil {
			return v, flashError(err.Error())
		}
	}
	return v, nil
}

func (v *bookingView) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "o":
		notes := new(string)
		*notes = v.wiz.Draft().Notes
		wiz := v.wiz
		form := formInputText("Notes for the office", "optional", false, notes)
		return v, startFormCmd(v.state, "Notes", form, func() tea.Cmd {
			wiz.SetNotes(*notes)
			return nil
		})
	case "enter":
		v.submitting = true
		return v, v.submit()
	}
	return v, nil
}

func (v *bookingView) submit() tea.Cmd {
	app := v.state.App
	wiz := v.wiz
	resched := v.resched
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.RequestTimeout)
		defer cancel()

		if resched != nil {
			slot := wiz.Draft().Slot
			err := app.Registry.Reschedule(ctx, resched.ID, slot.Start, slot.End)
			return bookedMsg{err: err}
		}

		created, err := wiz.Submit(ctx)
		if err != nil {
			return bookedMsg{err: err}
		}
		app.Registry.Invalidate()
		return bookedMsg{appt: created}
	}
}

// ── rendering ───────────────────────────────────────────────────────────────

func (v *bookingView) View() string {
	var b strings.Builder
	b.WriteString("\n  " + v.renderBreadcrumb() + "\n\n")

	switch v.wiz.Step() {
	case booking.StepSelectType:
		b.WriteString(v.renderTypes())
	case booking.StepSelectSlot:
		b.WriteString(v.renderSlots())
	case booking.StepSelectModes:
		b.WriteString(v.renderModes())
	case booking.StepConfirm:
		b.WriteString(v.renderSummary())
	}
	return b.String()
}

func (v *bookingView) renderBreadcrumb() string {
	steps := []string{"Service", "Slot", "Modes", "Confirm"}
	cur := int(v.wiz.Step())
	parts := make([]string, len(steps))
	for i, s := range steps {
		if i == cur {
			parts[i] = formatter.StyleHeader.Render(s)
		} else {
			parts[i] = formatter.Dim(s)
		}
	}
	return strings.Join(parts, formatter.Dim(" > "))
}

func (v *bookingView) renderTypes() string {
	if v.err != nil {
		return "  " + formatter.StyleRed.Render("Error: "+v.err.Error())
	}
	if v.catalog == nil {
		return "  " + formatter.Dim("Loading services...")
	}
	var b strings.Builder
	for i, svc := range v.catalog.Page() {
		cursor := "  "
		if i == v.typeCursor {
			cursor = formatter.StyleGreen.Render("▸ ")
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n",
			cursor, svc.Name, formatter.Dim(fmt.Sprintf("%d min", svc.DurationMin))))
	}
	if n := v.catalog.PageCount(); n > 1 {
		b.WriteString("  " + formatter.Dim(fmt.Sprintf("page %d/%d", v.catalog.PageIndex()+1, n)) + "\n")
	}
	return b.String()
}

func (v *bookingView) renderSlots() string {
	var b strings.Builder
	b.WriteString("  " + formatter.StyleBold.Render(v.day.Format("Monday 2 January 2006")) + "\n")

	if v.loadingSlots {
		b.WriteString("  " + formatter.Dim("Computing slots...") + "\n")
		return b.String()
	}
	if v.err != nil {
		b.WriteString("  " + formatter.StyleRed.Render("Error: "+v.err.Error()) + "\n")
		return b.String()
	}
	if len(v.slots) == 0 {
		b.WriteString("  " + formatter.Dim("No bookable slots on this day.") + "\n")
		return b.String()
	}

	for i, s := range v.slots {
		cursor := "  "
		if i == v.slotCursor {
			cursor = formatter.StyleGreen.Render("▸ ")
		}
		b.WriteString(cursor + renderSlot(s) + "\n")
	}
	return b.String()
}

func renderSlot(s domain.Slot) string {
	interval := fmt.Sprintf("%s–%s", s.Start.Format("15:04"), s.End.Format("15:04"))
	if s.Available {
		return formatter.StyleGreen.Render(interval) + " " + formatter.Dim("free")
	}
	label := "occupied"
	if s.Merged {
		label = "occupied (joined)"
	}
	return formatter.Dim(interval + " " + label)
}

func (v *bookingView) renderModes() string {
	var b strings.Builder
	selected := make(map[domain.ServiceMode]bool)
	for _, m := range v.wiz.Draft().Modes {
		selected[m] = true
	}
	for i, m := range domain.AllServiceModes {
		cursor := "  "
		if i == v.modeCursor {
			cursor = formatter.StyleGreen.Render("▸ ")
		}
		box := formatter.Dim("[ ]")
		if selected[m] {
			box = formatter.StyleGreen.Render("[x]")
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, box, modeLabel(m)))
	}
	return b.String()
}

func (v *bookingView) renderSummary() string {
	d := v.wiz.Draft()
	var b strings.Builder
	if d.Service != nil {
		b.WriteString("  " + formatter.Dim("Service:") + " " + d.Service.Name + "\n")
	}
	if d.Slot != nil {
		b.WriteString(fmt.Sprintf("  %s %s %s–%s\n",
			formatter.Dim("When:"),
			d.Slot.Date.Format("Mon 2 Jan 2006"),
			d.Slot.Start.Format("15:04"), d.Slot.End.Format("15:04")))
	}
	if len(d.Modes) > 0 {
		b.WriteString("  " + formatter.Dim("Modes:") + " " + renderModes(d.Modes) + "\n")
	}
	if d.Notes != "" {
		b.WriteString("  " + formatter.Dim("Notes:") + " " + d.Notes + "\n")
	}
	b.WriteString("\n  " + formatter.StyleHeader.Render("Press enter to submit") + "\n")
	if v.submitting {
		b.WriteString("  " + formatter.Dim("Submitting...") + "\n")
	}
	return b.String()
}
