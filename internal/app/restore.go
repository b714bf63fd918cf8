package app

import (
	"context"

	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/logging"
)

// CanRestoreState reports whether a save state may be loaded. Loading one is not allowed in
// hardcore, so hardcore is turned off with a warning.
func (s *Session) CanRestoreState(ctx context.Context) bool {
	if !s.User.IsLoggedIn() {
		return false
	}

	if s.Game.DisableHardcore() {
		logging.FromContext(ctx).InfoContext(ctx, "Disabled hardcore to restore a save state")
		s.notifier.Notify(ctx, Notification{
			Kind:   NotificationWarning,
			Title:  "Disabling Hardcore mode.",
			Detail: "Loading save states is not allowed in Hardcore mode.",
		})
	}
	return true
}

// OnStateRestored drops popups that belong to the abandoned timeline
func (s *Session) OnStateRestored(ctx context.Context) {
	s.notifier.ClearPopups()
}

func (s *Session) SaveState() ([]byte, error) {
	return s.serializer.Capture()
}

func (s *Session) SaveStateToFile(path string) error {
	return s.serializer.SaveToFile(path)
}

// RestoreState loads a buffer produced by SaveState. Nothing changes if it cannot be loaded.
func (s *Session) RestoreState(ctx context.Context, buf []byte) error {
	if !s.CanRestoreState(ctx) {
		return domain.ErrNotLoggedIn
	}
	if err := s.serializer.Restore(buf); err != nil {
		return err
	}
	s.OnStateRestored(ctx)
	return nil
}

func (s *Session) RestoreStateFromFile(ctx context.Context, path string) error {
	if !s.CanRestoreState(ctx) {
		return domain.ErrNotLoggedIn
	}
	if err := s.serializer.LoadFromFile(path); err != nil {
		return err
	}
	s.OnStateRestored(ctx)
	return nil
}
