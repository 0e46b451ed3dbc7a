package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/axiona25/Sportello-Notai-sub001/internal/cli/formatter"
	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
)

// notifsLoadedMsg signals that the notification set was refreshed.
type notifsLoadedMsg struct {
	err error
}

// notificationsView lists the live notification set (the bell dropdown).
type notificationsView struct {
	state   *SharedState
	rows    []domain.Notification
	cursor  int
	loading bool
	err     error
}

func newNotificationsView(state *SharedState) *notificationsView {
	return &notificationsView{state: state, loading: true}
}

func (v *notificationsView) ID() ViewID    { return ViewNotifications }
func (v *notificationsView) Title() string { return "Notifications" }

func (v *notificationsView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "mark all read")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

func (v *notificationsView) Init() tea.Cmd {
	return v.refresh()
}

func (v *notificationsView) refresh() tea.Cmd {
	app := v.state.App
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.RequestTimeout)
		defer cancel()
		err := app.Notifications.RefreshNotifications(ctx)
		return notifsLoadedMsg{err: err}
	}
}

func (v *notificationsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case notifsLoadedMsg:
		v.loading = false
		v.err = msg.err
		v.reread()
		return v, nil

	case refreshViewMsg:
		v.reread()
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < len(v.rows)-1 {
				v.cursor++
			}
		case "enter":
			if v.cursor < len(v.rows) {
				return v, v.click(v.rows[v.cursor])
			}
		case "a":
			return v, v.markAllRead()
		case "r":
			v.loading = true
			return v, v.refresh()
		}
	}
	return v, nil
}

// click dispatches the notification's click semantics to the reconciler.
// A linked notification publishes a select-appointment event; the app
// model picks it up off the bus and runs the calendar jump.
func (v *notificationsView) click(n domain.Notification) tea.Cmd {
	app := v.state.App
	id := n.ID
	linked := n.AppointmentID != ""
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.RequestTimeout)
		defer cancel()
		app.Notifications.Click(ctx, id)
		if linked {
			return popViewMsg{}
		}
		return refreshViewMsg{}
	}
}

func (v *notificationsView) markAllRead() tea.Cmd {
	app := v.state.App
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.RequestTimeout)
		defer cancel()
		if err := app.Notifications.MarkAllRead(ctx); err != nil {
			return flashMsg{text: "mark all read failed: " + err.Error(), isErr: true}
		}
		return refreshViewMsg{}
	}
}

func (v *notificationsView) reread() {
	v.rows = v.state.App.Notifications.Notifications()
	if v.cursor >= len(v.rows) {
		v.cursor = 0
	}
}

func (v *notificationsView) View() string {
	if v.loading {
		return "\n  " + formatter.Dim("Loading notifications...")
	}
	if v.err != nil {
		return "\n  " + formatter.StyleRed.Render("Error: "+v.err.Error())
	}
	if len(v.rows) == 0 {
		return "\n  " + formatter.Dim("No notifications.")
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, n := range v.rows {
		cursor := "  "
		if i == v.cursor {
			cursor = formatter.StyleGreen.Render("▸ ")
		}
		b.WriteString(cursor + renderNotification(n) + "\n")
	}
	return b.String()
}

func renderNotification(n domain.Notification) string {
	dot := formatter.Dim("○")
	label := notificationLabel(n)
	if !n.Read {
		dot = formatter.StyleYellow.Render("●")
		label = formatter.StyleBold.Render(notificationLabel(n))
	}
	age := formatter.Dim(relativeAge(n.CreatedAt))
	return fmt.Sprintf("%s %s  %s", dot, label, age)
}

func notificationLabel(n domain.Notification) string {
	var label string
	switch n.Type {
	case domain.NotifAppointmentRequested:
		label = "New appointment request"
	case domain.NotifAppointmentConfirmed:
		label = "Appointment confirmed"
	case domain.NotifDocumentUploaded:
		label = "Document uploaded"
	case domain.NotifDocumentApproved:
		label = "Document approved"
	case domain.NotifDocumentRejected:
		label = "Document rejected"
	case domain.NotifDocumentsRequired:
		label = "Documents required"
	default:
		label = string(n.Type)
	}
	if n.ServiceName != "" {
		label += " · " + n.ServiceName
	}
	if n.ClientName != "" {
		label += " · " + n.ClientName
	}
	return label
}

// relativeAge formats a timestamp as a compact age ("3m", "2h", "5d").
func relativeAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
