package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/axiona25/Sportello-Notai-sub001/internal/backend"
)

// actionResult turns an appointment action's outcome into the shared
// flash-and-refresh pattern. A conflict (the backend already handled the
// appointment) gets a distinct warning and re-syncs notifications, since
// the stale request notification is about to disappear.
func actionResult(state *SharedState, verb string, err error) tea.Msg {
	if err == nil {
		return flashMsg{text: verb + " ok"}
	}
	if errors.Is(err, backend.ErrAlreadyHandled) {
		state.App.Notifications.Trigger()
		return flashMsg{text: "already handled elsewhere", isErr: true}
	}
	return flashMsg{text: fmt.Sprintf("%s failed: %v", verb, err), isErr: true}
}

func confirmAppointmentCmd(state *SharedState, id, note string) tea.Cmd {
	app := state.App
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.RequestTimeout)
		defer cancel()
		return actionResult(state, "confirm", app.Registry.Confirm(ctx, id, note))
	}
}

func rejectAppointmentCmd(state *SharedState, id, reason string) tea.Cmd {
	app := state.App
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.RequestTimeout)
		defer cancel()
		return actionResult(state, "reject", app.Registry.Reject(ctx, id, reason))
	}
}

func cancelAppointmentCmd(state *SharedState, id, reason string) tea.Cmd {
	app := state.App
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.RequestTimeout)
		defer cancel()
		return actionResult(state, "cancel", app.Registry.Cancel(ctx, id, reason))
	}
}

func deleteAppointmentCmd(state *SharedState, id string) tea.Cmd {
	app := state.App
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.RequestTimeout)
		defer cancel()
		return actionResult(state, "delete", app.Registry.Delete(ctx, id))
	}
}

func uploadDocumentCmd(state *SharedState, documentID, path string) tea.Cmd {
	app := state.App
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return flashMsg{text: "cannot read file: " + err.Error(), isErr: true}
		}
		ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.RequestTimeout)
		defer cancel()
		err = app.Backend.UploadDocument(ctx, documentID, filepath.Base(path), data)
		if err == nil {
			app.Notifications.Trigger()
		}
		return actionResult(state, "upload", err)
	}
}

func verifyDocumentCmd(state *SharedState, documentID string, action backend.VerifyAction, note string) tea.Cmd {
	app := state.App
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.Cfg.RequestTimeout)
		defer cancel()
		err := app.Backend.VerifyDocument(ctx, documentID, action, note)
		if err == nil {
			app.Notifications.Trigger()
		}
		return actionResult(state, string(action), err)
	}
}
