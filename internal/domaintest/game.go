package domaintest

import (
	"slices"

	"github.com/Amund211/cheevo/internal/domain"
)

type gameBuilder struct {
	game *domain.GameDefinition
}

// WithAchievement adds a core achievement
func (gb *gameBuilder) WithAchievement(id uint32, title string, points uint32, memAddr string) *gameBuilder {
	return gb.WithAchievementDefinition(domain.AchievementDefinition{
		ID:       id,
		Title:    title,
		Points:   points,
		Category: domain.CategoryCore,
		MemAddr:  memAddr,
	})
}

func (gb *gameBuilder) WithAchievementDefinition(def domain.AchievementDefinition) *gameBuilder {
	gb.game.Achievements = append(gb.game.Achievements, def)
	return gb
}

func (gb *gameBuilder) WithLeaderboard(id uint32, title string, format domain.ValueFormat, mem string) *gameBuilder {
	gb.game.Leaderboards = append(gb.game.Leaderboards, domain.LeaderboardDefinition{
		ID:     id,
		Title:  title,
		Format: format,
		Mem:    mem,
	})
	return gb
}

func (gb *gameBuilder) WithRichPresence(script string) *gameBuilder {
	gb.game.RichPresence = script
	return gb
}

func (gb *gameBuilder) Build() domain.GameDefinition {
	// Copy the slices, so further mutations to the builder don't affect the returned game
	game := *gb.game
	game.Achievements = slices.Clone(game.Achievements)
	game.Leaderboards = slices.Clone(game.Leaderboards)
	return game
}

func NewGameBuilder(id uint32, title string) *gameBuilder {
	return &gameBuilder{
		game: &domain.GameDefinition{
			ID:    id,
			Title: title,
		},
	}
}
