package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/logging"
	"github.com/Amund211/cheevo/internal/reporting"
)

// Activation summarizes what ActivateGame loaded into the processor
type Activation struct {
	Game domain.GameDefinition
	// Session is the zero value if it could not be recorded
	Session domain.GameSession

	ActiveAchievements   []uint32
	UnlockedAchievements []uint32
	ActiveLeaderboards   []uint32
	// Invalid holds one error per definition that could not be parsed
	Invalid []error
}

// ActivateGame loads the definitions of a game and replaces whatever the processor was tracking.
// Achievements the user already unlocked are not activated. Definitions that fail to parse are
// skipped, the rest of the game still loads.
func (s *Session) ActivateGame(ctx context.Context, gameID uint32, hash string) (Activation, error) {
	ctx = logging.AddMetaToContext(ctx, slog.Uint64("gameId", uint64(gameID)))
	logger := logging.FromContext(ctx)

	credentials, _, ok := s.User.Credentials()
	if !ok {
		return Activation{}, domain.ErrNotLoggedIn
	}

	settings := s.Game.Settings()
	ctx = reporting.SetGameInContext(ctx, gameID, settings.Hardcore)

	data, err := s.provider.GetGameData(ctx, credentials, gameID, settings.Hardcore)
	if err != nil {
		return Activation{}, fmt.Errorf("failed to load game %d: %w", gameID, err)
	}

	unlocked := map[uint32]bool{}
	for _, id := range data.UnlockedAchievements {
		unlocked[id] = true
	}
	recorded, err := s.repo.GetUnlocks(ctx, credentials.Username, gameID, settings.Hardcore)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to get recorded unlocks", "error", err)
		reporting.Report(ctx, fmt.Errorf("failed to get recorded unlocks: %w", err))
	}
	for _, id := range recorded {
		unlocked[id] = true
	}

	s.deactivateAll()
	s.Game.load(data.Game, hash)
	s.Trackers.Clear()

	activation := Activation{Game: data.Game}

	for _, def := range data.Game.Achievements {
		if def.Category == domain.CategoryUnofficial && !settings.IncludeUnofficial {
			continue
		}
		if unlocked[def.ID] {
			s.Game.markAwarded(def.ID, "")
			activation.UnlockedAchievements = append(activation.UnlockedAchievements, def.ID)
			continue
		}
		if err := s.proc.ActivateAchievement(def); err != nil {
			logger.WarnContext(ctx, "Skipping invalid achievement", "achievementId", def.ID, "error", err)
			activation.Invalid = append(activation.Invalid, err)
			continue
		}
		activation.ActiveAchievements = append(activation.ActiveAchievements, def.ID)
	}

	for _, def := range data.Game.Leaderboards {
		if err := s.proc.ActivateLeaderboard(def); err != nil {
			logger.WarnContext(ctx, "Skipping invalid leaderboard", "leaderboardId", def.ID, "error", err)
			activation.Invalid = append(activation.Invalid, err)
			continue
		}
		activation.ActiveLeaderboards = append(activation.ActiveLeaderboards, def.ID)
	}

	if err := s.proc.SetRichPresence(data.Game.RichPresence); err != nil {
		logger.WarnContext(ctx, "Ignoring invalid rich presence", "error", err)
		_ = s.proc.SetRichPresence("")
		activation.Invalid = append(activation.Invalid, fmt.Errorf("rich presence: %w", err))
	}

	session, err := s.repo.StartSession(ctx, credentials.Username, gameID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to start game session", "error", err)
		reporting.Report(ctx, fmt.Errorf("failed to start game session: %w", err))
	} else {
		activation.Session = session
	}

	logger.InfoContext(ctx, "Activated game",
		"achievements", len(activation.ActiveAchievements),
		"unlocked", len(activation.UnlockedAchievements),
		"leaderboards", len(activation.ActiveLeaderboards),
		"invalid", len(activation.Invalid),
	)

	s.notifier.Notify(ctx, Notification{
		Kind:  NotificationInfo,
		Title: data.Game.Title,
		Detail: s.printer.Sprintf(
			"%d of %d achievements unlocked",
			len(activation.UnlockedAchievements),
			len(activation.UnlockedAchievements)+len(activation.ActiveAchievements),
		),
	})

	return activation, nil
}

func (s *Session) deactivateAll() {
	for _, id := range s.Game.achievementIDs() {
		s.proc.DeactivateAchievement(id)
	}
	for _, id := range s.Game.leaderboardIDs() {
		s.proc.DeactivateLeaderboard(id)
	}
}
