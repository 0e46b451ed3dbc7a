package cli

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// navPhase is the coordinator's explicit state.
type navPhase int

const (
	navIdle navPhase = iota
	navFromNotification
)

// settleDelay is the pause between the coordinated steps of a
// notification jump, letting each render land before the next step.
const settleDelay = 150 * time.Millisecond

// navSettleMsg advances a notification jump after a settle pause.
// Stale messages carry an old seq and are ignored.
type navSettleMsg struct {
	seq   int
	stage int
}

// coordinator serializes notification-driven navigation: jump the
// calendar to the appointment's date, wait for the view to settle,
// select and highlight the row, then optionally open the detail view.
// While a jump is in flight the calendar's date-change observer is
// suppressed so the programmatic date move does not clear the selection
// it is about to make. All access happens on the tea loop.
type coordinator struct {
	phase      navPhase
	targetID   string
	openDetail bool
	seq        int
}

// Begin starts a jump to the given appointment. A jump already in
// flight is superseded.
func (c *coordinator) Begin(appointmentID string, openDetail bool) {
	c.phase = navFromNotification
	c.targetID = appointmentID
	c.openDetail = openDetail
	c.seq++
}

// Active reports whether a jump is in flight. The calendar checks this
// before clearing its selection on date changes.
func (c *coordinator) Active() bool {
	return c.phase == navFromNotification
}

// Target returns the appointment the current jump is heading for.
func (c *coordinator) Target() string {
	return c.targetID
}

// OpenDetail reports whether the jump should end on the detail view.
func (c *coordinator) OpenDetail() bool {
	return c.openDetail
}

// Current reports whether seq identifies the jump in flight.
func (c *coordinator) Current(seq int) bool {
	return c.phase == navFromNotification && seq == c.seq
}

// Finish returns the coordinator to idle. The jump's intent is consumed
// whether it succeeded or was dropped.
func (c *coordinator) Finish() {
	c.phase = navIdle
	c.targetID = ""
	c.openDetail = false
}

// settleCmd schedules the next jump stage after the settle pause.
func (c *coordinator) settleCmd(stage int) tea.Cmd {
	seq := c.seq
	return tea.Tick(settleDelay, func(time.Time) tea.Msg {
		return navSettleMsg{seq: seq, stage: stage}
	})
}
