package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/axiona25/Sportello-Notai-sub001/internal/backend"
	"github.com/axiona25/Sportello-Notai-sub001/internal/cli/formatter"
	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
)

// detailLoadedMsg signals that the appointment and its documents loaded.
type detailLoadedMsg struct {
	appt *domain.Appointment
	docs []domain.Document
	err  error
}

// detailView shows one appointment with its documents and the
// role-appropriate actions.
type detailView struct {
	state *SharedState

	apptID    string
	appt      *domain.Appointment
	docs      []domain.Document
	docCursor int
	loading   bool
	err       error
}

func newDetailView(state *SharedState, appointmentID string) *detailView {
	return &detailView{state: state, apptID: appointmentID, loading: true}
}

func (v *detailView) ID() ViewID { return ViewDetail }
func (v *detailView) Title() string {
	if v.appt != nil && v.appt.ServiceName != "" {
		return v.appt.ServiceName
	}
	return "Appointment"
}

func (v *detailView) ShortHelp() []key.Binding {
	var hints []key.Binding
	if v.state.IsNotary() {
		if v.appt != nil && v.appt.Status == domain.StatusProvisional {
			hints = append(hints,
				key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "confirm")),
				key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reject")),
			)
		}
		hints = append(hints,
			key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "approve doc")),
			key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "reject doc")),
			key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete")),
		)
	} else {
		hints = append(hints,
			key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload doc")),
		)
	}
	hints = append(hints,
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "reschedule")),
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "cancel appt")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	)
	return hints
}

func (v *detailView) Init() tea.Cmd {
	return v.load()
}

func (v *detailView) load() tea.Cmd {
	app := v.state.App
	id := v.apptID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.RequestTimeout)
		defer cancel()

		appt, err := app.Backend.GetAppointment(ctx, id)
		if err != nil {
			return detailLoadedMsg{err: err}
		}
		appt.Status = domain.NormalizeStatus(string(appt.Status))

		docs, err := app.Backend.ListDocuments(ctx, id)
		if err != nil {
			return detailLoadedMsg{appt: appt, err: err}
		}
		return detailLoadedMsg{appt: appt, docs: docs}
	}
}

func (v *detailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		v.loading = false
		v.appt = msg.appt
		v.docs = msg.docs
		v.err = msg.err
		if v.docCursor >= len(v.docs) {
			v.docCursor = 0
		}
		return v, nil

	case refreshViewMsg:
		return v, v.load()

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *detailView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.appt == nil {
		return v, nil
	}
	notary := v.state.IsNotary()

	switch msg.String() {
	case "up", "k":
		if v.docCursor > 0 {
			v.docCursor--
		}
	case "down", "j":
		if v.docCursor < len(v.docs)-1 {
			v.docCursor++
		}

	case "c":
		if notary && v.appt.Status == domain.StatusProvisional {
			return v, v.confirmForm()
		}
	case "x":
		if notary && v.appt.Status == domain.StatusProvisional {
			return v, v.rejectForm()
		}
	case "a":
		return v, v.cancelForm()
	case "D":
		if notary {
			return v, v.deleteForm()
		}
	case "e":
		return v, pushView(newRescheduleView(v.state, *v.appt))

	case "v":
		if notary {
			return v, v.approveDocForm()
		}
	case "b":
		if notary {
			return v, v.rejectDocForm()
		}
	case "u":
		if !notary {
			return v, v.uploadForm()
		}
	}
	return v, nil
}

func (v *detailView) confirmForm() tea.Cmd {
	note := new(string)
	id := v.apptID
	state := v.state
	form := formInputText("Confirmation note", "optional", false, note)
	return startFormCmd(state, "Confirm", form, func() tea.Cmd {
		return confirmAppointmentCmd(state, id, *note)
	})
}

func (v *detailView) rejectForm() tea.Cmd {
	reason := new(string)
	id := v.apptID
	state := v.state
	form := formInputText("Rejection reason", "", true, reason)
	return startFormCmd(state, "Reject", form, func() tea.Cmd {
		return rejectAppointmentCmd(state, id, *reason)
	})
}

func (v *detailView) cancelForm() tea.Cmd {
	reason := new(string)
	id := v.apptID
	state := v.state
	form := formInputText("Cancellation reason", "optional", false, reason)
	return startFormCmd(state, "Cancel", form, func() tea.Cmd {
		return cancelAppointmentCmd(state, id, *reason)
	})
}

func (v *detailView) deleteForm() tea.Cmd {
	typed := new(string)
	id := v.apptID
	state := v.state
	subject := "appointment"
	if v.appt.ServiceName != "" {
		subject = v.appt.ServiceName
	}
	form := formDeleteConfirmation(subject, typed)
	return startFormCmd(state, "Delete", form, func() tea.Cmd {
		if *typed != deleteConfirmWord {
			return flashError("deletion not confirmed")
		}
		return tea.Batch(deleteAppointmentCmd(state, id), popView())
	})
}

func (v *detailView) approveDocForm() tea.Cmd {
	if v.docCursor >= len(v.docs) {
		return nil
	}
	doc := v.docs[v.docCursor]
	if !doc.HasFile {
		return flashError("no file to verify")
	}
	yes := new(bool)
	*yes = true
	state := v.state
	form := formConfirm("Approve "+doc.Name+"?", yes)
	return startFormCmd(state, "Approve document", form, func() tea.Cmd {
		if !*yes {
			return nil
		}
		return verifyDocumentCmd(state, doc.ID, backend.VerifyApprove, "")
	})
}

func (v *detailView) rejectDocForm() tea.Cmd {
	if v.docCursor >= len(v.docs) {
		return nil
	}
	doc := v.docs[v.docCursor]
	if !doc.HasFile {
		return flashError("no file to verify")
	}
	note := new(string)
	state := v.state
	form := formInputText("Rejection note", "what is wrong with the file", true, note)
	return startFormCmd(state, "Reject document", form, func() tea.Cmd {
		return verifyDocumentCmd(state, doc.ID, backend.VerifyReject, *note)
	})
}

func (v *detailView) uploadForm() tea.Cmd {
	if v.docCursor >= len(v.docs) {
		return flashError("no document slot selected")
	}
	doc := v.docs[v.docCursor]
	path := new(string)
	state := v.state
	form := formInputText("File path", "/path/to/document.pdf", true, path)
	return startFormCmd(state, "Upload", form, func() tea.Cmd {
		return uploadDocumentCmd(state, doc.ID, *path)
	})
}

func (v *detailView) View() string {
	if v.loading {
		return "\n  " + formatter.Dim("Loading appointment...")
	}
	if v.err != nil {
		return "\n  " + formatter.StyleRed.Render("Error: "+v.err.Error())
	}
	if v.appt == nil {
		return "\n  " + formatter.Dim("Appointment not found.")
	}

	a := v.appt
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + formatter.StyleBold.Render(appointmentLabel(*a, v.state.IsNotary())) + "\n")
	b.WriteString(fmt.Sprintf("  %s %s\n",
		formatter.Dim("When:"),
		a.Start.Format("Mon 2 Jan 2006 15:04")+"–"+a.End.Format("15:04")))
	b.WriteString("  " + formatter.Dim("Status:") + " " + formatter.StatusLabel(a.Status) + "\n")
	if len(a.Modes) > 0 {
		b.WriteString("  " + formatter.Dim("Modes:") + " " + renderModes(a.Modes) + "\n")
	}
	if a.Notes != "" {
		b.WriteString("  " + formatter.Dim("Notes:") + " " + a.Notes + "\n")
	}

	b.WriteString("\n  " + formatter.StyleHeader.Render("Documents") + "\n")
	if len(v.docs) == 0 {
		b.WriteString("  " + formatter.Dim("None required.") + "\n")
	}
	for i, d := range v.docs {
		cursor := "  "
		if i == v.docCursor {
			cursor = formatter.StyleGreen.Render("▸ ")
		}
		b.WriteString(cursor + renderDocument(d) + "\n")
	}
	return b.String()
}

func renderDocument(d domain.Document) string {
	icon := formatter.Dim("·")
	switch {
	case d.Status == domain.DocApproved:
		icon = formatter.StyleGreen.Render("✓")
	case d.Status == domain.DocRejected:
		icon = formatter.StyleRed.Render("✗")
	case d.HasFile:
		icon = formatter.StyleYellow.Render("…")
	}
	line := fmt.Sprintf("%s %s", icon, d.Name)
	if d.Required {
		line += " " + formatter.Dim("(required)")
	}
	if !d.HasFile {
		line += " " + formatter.Dim("missing")
	}
	if d.Status == domain.DocRejected && d.RejectionNote != "" {
		line += " " + formatter.StyleRed.Render(d.RejectionNote)
	}
	return line
}

func renderModes(modes []domain.ServiceMode) string {
	parts := make([]string, len(modes))
	for i, m := range modes {
		parts[i] = modeLabel(m)
	}
	return strings.Join(parts, ", ")
}

func modeLabel(m domain.ServiceMode) string {
	switch m {
	case domain.ModeInPerson:
		return "in person"
	case domain.ModeVideo:
		return "video"
	case domain.ModePhone:
		return "phone"
	case domain.ModeDigitalSignature:
		return "digital signature"
	case domain.ModeConservation:
		return "conservation"
	case domain.ModeSharedFolder:
		return "shared folder"
	}
	return string(m)
}
