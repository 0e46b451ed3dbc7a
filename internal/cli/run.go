package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// RunTUI starts the interactive program: bridges the engine bus into the
// tea loop, runs the background polls, and blocks until the user quits.
func RunTUI(app *App) error {
	if app.IsInteractive != nil && !app.IsInteractive() {
		return errors.New("sportello needs an interactive terminal")
	}
	defer app.Log.Sync()

	m := newAppModel(app)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())

	unsubscribe := busBridge(app.Bus, p.Send)
	defer unsubscribe()

	app.Notifications.Start()
	defer app.Notifications.Stop()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if app.RefreshTask != nil {
		app.RefreshTask.Start(ctx)
		defer app.RefreshTask.Stop()
	}
	if app.DirectoryTask != nil {
		app.DirectoryTask.Start(ctx)
		defer app.DirectoryTask.Stop()
	}

	_, err := p.Run()
	return err
}
