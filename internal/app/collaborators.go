package app

import (
	"context"

	"github.com/Amund211/cheevo/internal/adapters/definitionprovider"
	"github.com/Amund211/cheevo/internal/api"
	"github.com/Amund211/cheevo/internal/domain"
)

// Emulator is the host running the game
type Emulator interface {
	// Pause requests that emulation stops until the user resumes it
	Pause()
}

type NotificationKind int

const (
	NotificationInfo NotificationKind = iota
	NotificationAchievement
	NotificationLeaderboard
	NotificationWarning
	NotificationError
)

func (k NotificationKind) String() string {
	switch k {
	case NotificationInfo:
		return "info"
	case NotificationAchievement:
		return "achievement"
	case NotificationLeaderboard:
		return "leaderboard"
	case NotificationWarning:
		return "warning"
	case NotificationError:
		return "error"
	}
	return "unknown"
}

// Notification is a message for the user, usually shown as a popup
type Notification struct {
	Kind   NotificationKind
	Title  string
	Detail string
	// ID of the achievement or leaderboard, if any
	ID uint32
}

// Notifier shows notifications to the user.
// Notify may be called from request completions, concurrently with the frame loop.
type Notifier interface {
	Notify(ctx context.Context, notification Notification)
	ClearPopups()
}

type sessionRepository interface {
	RegisterUser(ctx context.Context, username string) (domain.User, error)
	StartSession(ctx context.Context, username string, gameID uint32) (domain.GameSession, error)
	RecordUnlock(ctx context.Context, unlock domain.Unlock) error
	GetUnlocks(ctx context.Context, username string, gameID uint32, hardcore bool) ([]uint32, error)
}

type definitionProvider interface {
	GetGameData(ctx context.Context, credentials api.Credentials, gameID uint32, hardcore bool) (definitionprovider.GameData, error)
}

// Implemented by providers that cache unlocks between activations
type unlockForgetter interface {
	Forget(username string, gameID uint32, hardcore bool)
}
