package app

import (
	"context"

	"github.com/Amund211/cheevo/internal/domain"
)

// DoFrame evaluates one frame and routes its changes. The changes are returned for hosts that
// want to react to them too.
func (s *Session) DoFrame(ctx context.Context) []domain.Change {
	changes := s.proc.Process(ctx)
	s.Route(ctx, changes)
	return changes
}

func (s *Session) Pause() {
	s.proc.Pause()
}

func (s *Session) Resume() {
	s.proc.Resume()
}

// ResetRuntime reinitializes every tracked definition, e.g. when the game is reset
func (s *Session) ResetRuntime() {
	s.proc.Reset()
	s.Trackers.Clear()
}

func (s *Session) RichPresence() string {
	return s.proc.RichPresenceDisplay()
}
