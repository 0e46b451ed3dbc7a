package cli

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/axiona25/Sportello-Notai-sub001/internal/bus"
)

// Navigation messages used by views to request view transitions.
// The appModel handles these in its Update method.

// pushViewMsg pushes a new view onto the navigation stack.
type pushViewMsg struct {
	view View
}

// popViewMsg pops the current view off the navigation stack,
// returning to the previous view.
type popViewMsg struct{}

// replaceViewMsg replaces the current top view with a new one.
type replaceViewMsg struct {
	view View
}

// refreshViewMsg asks every view on the stack to reload its data.
type refreshViewMsg struct{}

// flashMsg carries a transient status-line message (action results,
// guard warnings). Errors render in red.
type flashMsg struct {
	text  string
	isErr bool
}

// flashClearMsg clears the status line after a pause. Stale timers
// carry an old seq and are ignored.
type flashClearMsg struct{ seq int }

// wizardCompleteMsg is sent when a form completes or is cancelled.
// The appModel handles it atomically: pop the form view, then run nextCmd.
type wizardCompleteMsg struct {
	nextCmd tea.Cmd
}

// busEventMsg wraps an engine bus event delivered into the tea loop.
// The Run bridge sends these via program.Send; tests send them directly.
type busEventMsg struct {
	event bus.Event
}

// quitMsg signals the app to quit.
type quitMsg struct{}

// pushView returns a tea.Cmd that pushes a view onto the stack.
func pushView(v View) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{view: v} }
}

// popView returns a tea.Cmd that pops the current view.
func popView() tea.Cmd {
	return func() tea.Msg { return popViewMsg{} }
}

// replaceView returns a tea.Cmd that replaces the top view.
func replaceView(v View) tea.Cmd {
	return func() tea.Msg { return replaceViewMsg{view: v} }
}

// refreshViews returns a tea.Cmd that broadcasts a reload to the stack.
func refreshViews() tea.Cmd {
	return func() tea.Msg { return refreshViewMsg{} }
}

// flash returns a tea.Cmd that shows a transient status message.
func flash(text string) tea.Cmd {
	return func() tea.Msg { return flashMsg{text: text} }
}

// flashError returns a tea.Cmd that shows a transient error message.
func flashError(text string) tea.Cmd {
	return func() tea.Msg { return flashMsg{text: text, isErr: true} }
}
