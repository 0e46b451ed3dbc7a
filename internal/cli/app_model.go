package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/axiona25/Sportello-Notai-sub001/internal/bus"
	"github.com/axiona25/Sportello-Notai-sub001/internal/cli/formatter"
)

// flashDuration is how long a transient status message stays visible.
const flashDuration = 3 * time.Second

// appModel is the root bubbletea Model for the TUI. It manages a view
// stack, bridges engine bus events into the view layer, and pauses the
// background polls while the terminal is unfocused.
type appModel struct {
	state     *SharedState
	viewStack []View
	quitting  bool

	flashText string
	flashErr  bool
	flashSeq  int
}

func newAppModel(app *App) appModel {
	state := &SharedState{
		App: app,
		Nav: &coordinator{},
	}
	m := appModel{state: state}

	// Start with the calendar as the home view.
	m.viewStack = []View{newCalendarView(state)}

	return m
}

// activeView returns the top view on the stack, or nil.
func (m *appModel) activeView() View {
	if len(m.viewStack) == 0 {
		return nil
	}
	return m.viewStack[len(m.viewStack)-1]
}

// setActiveView replaces the top of the view stack.
// If the stack is empty, this is a no-op.
func (m *appModel) setActiveView(v View) {
	if len(m.viewStack) > 0 {
		m.viewStack[len(m.viewStack)-1] = v
	}
}

// rootView returns the calendar at the bottom of the stack.
func (m *appModel) rootView() View {
	if len(m.viewStack) == 0 {
		return nil
	}
	return m.viewStack[0]
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m appModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if v := m.activeView(); v != nil {
		cmds = append(cmds, v.Init())
	}
	// Initial notification sync so the bell badge is right from the start.
	app := m.state.App
	cmds = append(cmds, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.RequestTimeout)
		defer cancel()
		err := app.Notifications.RefreshNotifications(ctx)
		return notifsLoadedMsg{err: err}
	})
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		if v := m.activeView(); v != nil {
			updated, cmd := v.Update(msg)
			m.setActiveView(updated.(View))
			return m, cmd
		}
		return m, nil

	case tea.FocusMsg:
		m.resumePolls()
		return m, nil

	case tea.BlurMsg:
		m.pausePolls()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case busEventMsg:
		return m.handleBusEvent(msg.event)

	case notifsLoadedMsg:
		m.state.UnreadCount = m.state.App.Notifications.UnreadCount()
		if v := m.activeView(); v != nil {
			updated, cmd := v.Update(msg)
			m.setActiveView(updated.(View))
			return m, cmd
		}
		return m, nil

	// Navigation messages from views
	case pushViewMsg:
		m.viewStack = append(m.viewStack, msg.view)
		return m, msg.view.Init()

	case popViewMsg:
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
		}
		return m, nil

	case replaceViewMsg:
		if len(m.viewStack) > 0 {
			m.viewStack[len(m.viewStack)-1] = msg.view
		} else {
			m.viewStack = append(m.viewStack, msg.view)
		}
		return m, msg.view.Init()

	case refreshViewMsg:
		// Broadcast to ALL views in the stack so underlying views (e.g. the
		// calendar) reload data after mutations made in views above them.
		return m, m.broadcast(msg)

	case wizardCompleteMsg:
		// Atomically pop the form view and execute the follow-up command.
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
		}
		return m, tea.Batch(msg.nextCmd, refreshViews())

	case flashMsg:
		m.flashText = msg.text
		m.flashErr = msg.isErr
		m.flashSeq++
		seq := m.flashSeq
		return m, tea.Tick(flashDuration, func(time.Time) tea.Msg {
			return flashClearMsg{seq: seq}
		})

	case flashClearMsg:
		if msg.seq == m.flashSeq {
			m.flashText = ""
		}
		return m, nil

	case quitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	// Forward to active view
	if v := m.activeView(); v != nil {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	return m, nil
}

// handleBusEvent maps engine events onto view-layer reactions.
func (m appModel) handleBusEvent(e bus.Event) (tea.Model, tea.Cmd) {
	switch e := e.(type) {
	case bus.AppointmentsChanged:
		return m, m.broadcast(refreshViewMsg{})

	case bus.NotificationsChanged:
		m.state.UnreadCount = m.state.App.Notifications.UnreadCount()
		return m, m.broadcast(refreshViewMsg{})

	case bus.SelectAppointment:
		// A notification click: collapse to the calendar and hand it the jump.
		m.viewStack = m.viewStack[:1]
		if root := m.rootView(); root != nil {
			updated, cmd := root.Update(jumpToAppointmentMsg{
				appointmentID: e.AppointmentID,
				openDetail:    e.OpenDetail,
			})
			m.viewStack[0] = updated.(View)
			return m, cmd
		}
	}
	return m, nil
}

// broadcast delivers msg to every view on the stack.
func (m appModel) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i, v := range m.viewStack {
		updated, cmd := v.Update(msg)
		m.viewStack[i] = updated.(View)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	// If active view captures input (has its own text input), forward
	// directly so forms receive all characters including 'q'.
	if v := m.activeView(); v != nil && viewCapturesInput(v) {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	switch {
	case msg.String() == "q" && len(m.viewStack) == 1:
		m.quitting = true
		return m, tea.Quit

	case msg.Type == tea.KeyEsc:
		// Pop view stack (go back)
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
			return m, nil
		}
		return m, nil
	}

	// Forward to active view
	if v := m.activeView(); v != nil {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	return m, nil
}

func (m appModel) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	if v := m.activeView(); v != nil {
		sections = append(sections, v.View())
	}

	sections = append(sections, m.renderStatusBar())

	result := strings.Join(sections, "\n")

	// Pad to terminal height to prevent stale line artifacts from
	// bubbletea's line-diff renderer in alt-screen mode.
	if m.state.Height > 0 {
		lines := strings.Count(result, "\n") + 1
		if lines < m.state.Height {
			result += strings.Repeat("\n", m.state.Height-lines)
		}
	}

	return result
}

// ── rendering helpers ────────────────────────────────────────────────────────

func (m *appModel) renderHeader() string {
	title := formatter.StylePurple.Render("sportello")

	// Breadcrumb from view stack
	var crumbs []string
	for _, v := range m.viewStack {
		if t := v.Title(); t != "" {
			crumbs = append(crumbs, t)
		}
	}
	breadcrumb := ""
	if len(crumbs) > 0 {
		breadcrumb = " " + formatter.Dim("›") + " " + formatter.Dim(strings.Join(crumbs, " › "))
	}

	header := title + breadcrumb

	// Unread bell badge
	if n := m.state.UnreadCount; n > 0 {
		header += "  " + formatter.Dim("[") +
			formatter.StyleYellow.Render(fmt.Sprintf("✉ %d", n)) +
			formatter.Dim("]")
	}

	sep := formatter.Dim(strings.Repeat("─", max(m.state.Width, 20)))
	return header + "\n" + sep
}

func (m *appModel) renderStatusBar() string {
	var hints []string

	if m.flashText != "" {
		if m.flashErr {
			hints = append(hints, formatter.StyleRed.Render(m.flashText))
		} else {
			hints = append(hints, formatter.StyleGreen.Render(m.flashText))
		}
	}

	if v := m.activeView(); v != nil {
		for _, b := range v.ShortHelp() {
			hints = append(hints, formatter.Dim(b.Help().Key+": "+b.Help().Desc))
		}
	}
	if len(m.viewStack) == 1 {
		hints = append(hints, formatter.Dim("q: quit"))
	}

	bar := strings.Join(hints, "  ")
	sep := formatter.Dim(strings.Repeat("─", max(m.state.Width, 20)))
	return sep + "\n" + bar
}

// pausePolls suspends the background refreshes while the tab is hidden.
func (m *appModel) pausePolls() {
	app := m.state.App
	if app.RefreshTask != nil {
		app.RefreshTask.Pause()
	}
	if app.DirectoryTask != nil {
		app.DirectoryTask.Pause()
	}
}

// resumePolls restarts the background refreshes with an immediate run, so
// a returning user sees fresh data without waiting a full interval.
func (m *appModel) resumePolls() {
	app := m.state.App
	if app.RefreshTask != nil {
		app.RefreshTask.Resume()
	}
	if app.DirectoryTask != nil {
		app.DirectoryTask.Resume()
	}
}

// viewCapturesInput returns true if the active view has its own text input
// and should receive all key events (bypassing global keybindings like q/Esc).
func viewCapturesInput(v View) bool {
	if v == nil {
		return false
	}
	return v.ID() == ViewForm
}
