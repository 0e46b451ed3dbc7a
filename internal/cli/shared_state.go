package cli

import (
	"time"

	"github.com/axiona25/Sportello-Notai-sub001/internal/domain"
)

// SharedState holds context shared across all views via pointer.
type SharedState struct {
	App *App

	// Navigation coordinator for notification-driven jumps.
	Nav *coordinator

	// Terminal dimensions
	Width  int
	Height int

	// Unread badge, refreshed from the reconciler on notification events.
	UnreadCount int
}

// Role returns the configured portal role.
func (s *SharedState) Role() domain.Role {
	return s.App.Cfg.Role
}

// IsNotary reports whether this process runs on the notary side.
func (s *SharedState) IsNotary() bool {
	return s.Role() == domain.RoleNotary
}

// Today returns the current local date at midnight. Views use it as the
// initial calendar position.
func (s *SharedState) Today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// ContentHeight returns the available height for view content,
// accounting for header (2 lines: title + separator) and
// status bar (2 lines: separator + hints).
func (s *SharedState) ContentHeight() int {
	h := s.Height - 4
	if h < 1 {
		return 1
	}
	return h
}
