package domaintest_test

import (
	"testing"

	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/domaintest"
	"github.com/stretchr/testify/require"
)

func TestGameBuilder(t *testing.T) {
	t.Parallel()

	builder := domaintest.NewGameBuilder(12, "Game").
		WithAchievement(1, "First", 10, "0xH00=1").
		WithRichPresence("Display:\nHello\n")

	first := builder.Build()
	second := builder.WithLeaderboard(2, "Board", domain.FormatScore, "STA:1=1::CAN:0=1::SUB:1=1::VAL:0xH00").Build()

	require.Equal(t, domain.GameDefinition{
		ID:    12,
		Title: "Game",
		Achievements: []domain.AchievementDefinition{
			{ID: 1, Title: "First", Points: 10, Category: domain.CategoryCore, MemAddr: "0xH00=1"},
		},
		RichPresence: "Display:\nHello\n",
	}, first)
	require.Len(t, second.Leaderboards, 1)
	require.Equal(t, uint32(2), second.Leaderboards[0].ID)
}

func TestRandomSuffix(t *testing.T) {
	t.Parallel()

	first := domaintest.RandomSuffix(t, 8)
	require.Len(t, first, 8)
	require.Regexp(t, "^[0-9a-f]{8}$", first)
	require.NotEqual(t, first, domaintest.RandomSuffix(t, 8))
	require.Len(t, domaintest.RandomSuffix(t, 32), 32)
}
