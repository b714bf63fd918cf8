package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Amund211/cheevo/internal/api"
	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/logging"
	"github.com/Amund211/cheevo/internal/reporting"
)

// Route applies the side effects of the changes from one frame, in order
func (s *Session) Route(ctx context.Context, changes []domain.Change) {
	for _, change := range changes {
		switch c := change.(type) {
		case domain.AchievementReset:
			s.achievementReset(ctx, c)
		case domain.AchievementTriggered:
			s.achievementTriggered(ctx, c)
		case domain.LeaderboardStarted:
			s.leaderboardStarted(ctx, c)
		case domain.LeaderboardUpdated:
			s.leaderboardUpdated(c)
		case domain.LeaderboardCanceled:
			s.leaderboardCanceled(ctx, c)
		case domain.LeaderboardTriggered:
			s.leaderboardTriggered(ctx, c)
		default:
			logging.FromContext(ctx).WarnContext(ctx, "Unhandled change", "change", domain.FormatChange(change))
		}
	}
}

func (s *Session) achievementReset(ctx context.Context, c domain.AchievementReset) {
	if !s.Game.PauseOnReset(c.ID) {
		return
	}

	def, _ := s.Game.Achievement(c.ID)
	s.emulator.Pause()
	s.notifier.Notify(ctx, Notification{
		Kind:   NotificationWarning,
		Title:  "Paused on reset",
		Detail: def.Title,
		ID:     c.ID,
	})
}

func (s *Session) achievementTriggered(ctx context.Context, c domain.AchievementTriggered) {
	ctx = logging.AddMetaToContext(ctx, slog.Uint64("achievementId", uint64(c.ID)))
	logger := logging.FromContext(ctx)

	def, ok := s.Game.Achievement(c.ID)
	if !ok {
		logger.WarnContext(ctx, "Triggered achievement is not part of the loaded game")
		return
	}

	if !s.Game.markAwarded(c.ID, s.proc.RichPresenceDisplay()) {
		logger.InfoContext(ctx, "Achievement already awarded this session")
		return
	}

	s.notifier.Notify(ctx, Notification{
		Kind:   NotificationAchievement,
		Title:  def.Title,
		Detail: def.Description,
		ID:     c.ID,
	})

	if s.Game.PauseOnTrigger(c.ID) {
		s.emulator.Pause()
		s.notifier.Notify(ctx, Notification{
			Kind:   NotificationWarning,
			Title:  "Paused on trigger",
			Detail: def.Title,
			ID:     c.ID,
		})
	}

	if def.Category != domain.CategoryCore {
		logger.InfoContext(ctx, "Not submitting achievement outside the core set", "category", int(def.Category))
		return
	}

	s.awardAchievement(ctx, def)
}

func (s *Session) awardAchievement(ctx context.Context, def domain.AchievementDefinition) {
	logger := logging.FromContext(ctx)

	credentials, epoch, ok := s.User.Credentials()
	if !ok {
		logger.InfoContext(ctx, "Not logged in, achievement not submitted")
		return
	}

	gameID := s.Game.GameID()
	hardcore := s.Game.Hardcore()
	request := api.AwardAchievementRequest{
		Credentials:   credentials,
		AchievementID: def.ID,
		Hardcore:      hardcore,
		GameHash:      s.Game.Hash(),
	}

	api.CallAsyncWithRetry(ctx, s.client, request, func(response api.AwardAchievementResponse) {
		if !s.User.IsCurrent(epoch) {
			logger.InfoContext(ctx, "Discarding award completion from a previous login")
			return
		}

		if !response.Succeeded() {
			logger.WarnContext(ctx, "Failed to award achievement", "message", response.ErrorMessage)
			s.notifier.Notify(ctx, Notification{
				Kind:   NotificationError,
				Title:  fmt.Sprintf("Error unlocking %s", def.Title),
				Detail: response.ErrorMessage,
				ID:     def.ID,
			})
			return
		}

		s.User.SetScore(epoch, response.NewPlayerScore, hardcore)
		if forgetter, ok := s.provider.(unlockForgetter); ok {
			forgetter.Forget(credentials.Username, gameID, hardcore)
		}

		err := s.repo.RecordUnlock(ctx, domain.Unlock{
			Username:      credentials.Username,
			GameID:        gameID,
			AchievementID: def.ID,
			Hardcore:      hardcore,
			UnlockedAt:    s.nowFunc(),
		})
		if err != nil {
			logger.ErrorContext(ctx, "Failed to record unlock", "error", err)
			reportCtx := reporting.AddExtrasToContext(ctx, map[string]string{
				"gameId":        fmt.Sprint(gameID),
				"achievementId": fmt.Sprint(def.ID),
			})
			reporting.Report(reportCtx, fmt.Errorf("failed to record unlock: %w", err))
		}
	})
}

func (s *Session) leaderboardDefinition(ctx context.Context, id uint32) domain.LeaderboardDefinition {
	def, ok := s.Game.Leaderboard(id)
	if !ok {
		logging.FromContext(ctx).WarnContext(ctx, "Leaderboard is not part of the loaded game", "leaderboardId", id)
		return domain.LeaderboardDefinition{ID: id, Format: domain.FormatValue}
	}
	return def
}

// The tracker is created even when the start notification is disabled
func (s *Session) leaderboardStarted(ctx context.Context, c domain.LeaderboardStarted) {
	def := s.leaderboardDefinition(ctx, c.ID)
	if s.Game.Settings().LeaderboardNotifications {
		s.notifier.Notify(ctx, Notification{
			Kind:   NotificationLeaderboard,
			Title:  "Leaderboard attempt started",
			Detail: def.Title,
			ID:     c.ID,
		})
	}
	s.Trackers.Create(c.ID, def.Format.Format(c.Score))
}

func (s *Session) leaderboardUpdated(c domain.LeaderboardUpdated) {
	def, _ := s.Game.Leaderboard(c.ID)
	s.Trackers.Update(c.ID, def.Format.Format(c.Score))
}

func (s *Session) leaderboardCanceled(ctx context.Context, c domain.LeaderboardCanceled) {
	if s.Game.Settings().LeaderboardCancelNotifications {
		def := s.leaderboardDefinition(ctx, c.ID)
		s.notifier.Notify(ctx, Notification{
			Kind:   NotificationLeaderboard,
			Title:  "Leaderboard attempt failed",
			Detail: def.Title,
			ID:     c.ID,
		})
	}
	s.Trackers.Remove(c.ID)
}

func (s *Session) leaderboardTriggered(ctx context.Context, c domain.LeaderboardTriggered) {
	ctx = logging.AddMetaToContext(ctx, slog.Uint64("leaderboardId", uint64(c.ID)))
	logger := logging.FromContext(ctx)

	s.Trackers.Remove(c.ID)
	def := s.leaderboardDefinition(ctx, c.ID)

	if !s.Game.Hardcore() {
		logger.InfoContext(ctx, "Leaderboard entries are only submitted in hardcore")
		s.notifier.Notify(ctx, Notification{
			Kind:   NotificationLeaderboard,
			Title:  "Leaderboard submission skipped",
			Detail: fmt.Sprintf("%s: %s (hardcore is off)", def.Title, def.Format.Format(c.Score)),
			ID:     c.ID,
		})
		return
	}

	credentials, epoch, ok := s.User.Credentials()
	if !ok {
		logger.InfoContext(ctx, "Not logged in, leaderboard entry not submitted")
		return
	}

	request := api.SubmitLeaderboardEntryRequest{
		Credentials:   credentials,
		LeaderboardID: c.ID,
		Score:         c.Score,
		GameHash:      s.Game.Hash(),
	}

	api.CallAsyncWithRetry(ctx, s.client, request, func(response api.SubmitLeaderboardEntryResponse) {
		if !s.User.IsCurrent(epoch) {
			logger.InfoContext(ctx, "Discarding leaderboard completion from a previous login")
			return
		}

		if !response.Succeeded() {
			logger.WarnContext(ctx, "Failed to submit leaderboard entry", "message", response.ErrorMessage)
			s.notifier.Notify(ctx, Notification{
				Kind:   NotificationError,
				Title:  fmt.Sprintf("Error submitting %s", def.Title),
				Detail: response.ErrorMessage,
				ID:     c.ID,
			})
			return
		}

		s.notifier.Notify(ctx, Notification{
			Kind:  NotificationLeaderboard,
			Title: fmt.Sprintf("Submitted %s for %s", def.Format.Format(response.SubmittedScore), def.Title),
			Detail: s.printer.Sprintf(
				"Best: %s, rank %d of %d",
				def.Format.Format(response.BestScore), response.Rank, response.NumEntries,
			),
			ID: c.ID,
		})
	})
}
