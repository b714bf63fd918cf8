package definitionprovider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/Amund211/cheevo/internal/api"
	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/logging"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type yamlAchievement struct {
	ID          uint32 `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Points      uint32 `yaml:"points"`
	Category    string `yaml:"category"`
	Trigger     string `yaml:"trigger"`
}

type yamlLeaderboard struct {
	ID            uint32 `yaml:"id"`
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	Format        string `yaml:"format"`
	LowerIsBetter bool   `yaml:"lower_is_better"`
	Definition    string `yaml:"definition"`
}

type yamlGame struct {
	ID           uint32            `yaml:"id"`
	Title        string            `yaml:"title"`
	ConsoleID    uint32            `yaml:"console_id"`
	RichPresence string            `yaml:"rich_presence"`
	Achievements []yamlAchievement `yaml:"achievements"`
	Leaderboards []yamlLeaderboard `yaml:"leaderboards"`
}

func parseCategory(category string) (domain.AchievementCategory, error) {
	switch category {
	case "", "core":
		return domain.CategoryCore, nil
	case "unofficial":
		return domain.CategoryUnofficial, nil
	case "local":
		return domain.CategoryLocal, nil
	}
	return 0, fmt.Errorf("%w: unknown achievement category %q", domain.ErrInvalidDefinition, category)
}

// ParseGameFile decodes a game definition document
func ParseGameFile(data []byte) (domain.GameDefinition, error) {
	var parsed yamlGame
	err := yaml.Unmarshal(data, &parsed)
	if err != nil {
		return domain.GameDefinition{}, fmt.Errorf("%w: %w", domain.ErrInvalidDefinition, err)
	}

	game := domain.GameDefinition{
		ID:           parsed.ID,
		Title:        parsed.Title,
		ConsoleID:    parsed.ConsoleID,
		RichPresence: parsed.RichPresence,
		Achievements: make([]domain.AchievementDefinition, 0, len(parsed.Achievements)),
		Leaderboards: make([]domain.LeaderboardDefinition, 0, len(parsed.Leaderboards)),
	}

	for _, a := range parsed.Achievements {
		category, err := parseCategory(a.Category)
		if err != nil {
			return domain.GameDefinition{}, fmt.Errorf("achievement %d: %w", a.ID, err)
		}
		game.Achievements = append(game.Achievements, domain.AchievementDefinition{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Points:      a.Points,
			Category:    category,
			MemAddr:     a.Trigger,
		})
	}

	for _, lb := range parsed.Leaderboards {
		game.Leaderboards = append(game.Leaderboards, domain.LeaderboardDefinition{
			ID:            lb.ID,
			Title:         lb.Title,
			Description:   lb.Description,
			Format:        domain.ParseValueFormat(lb.Format),
			LowerIsBetter: lb.LowerIsBetter,
			Mem:           lb.Definition,
		})
	}

	return game, nil
}

type yamlProvider struct {
	fs  afero.Fs
	dir string
}

// NewYAML reads <dir>/<game id>.yaml. Local files carry no unlocks.
func NewYAML(fs afero.Fs, dir string) *yamlProvider {
	return &yamlProvider{fs: fs, dir: dir}
}

func (p *yamlProvider) GetGameData(ctx context.Context, credentials api.Credentials, gameID uint32, hardcore bool) (GameData, error) {
	path := filepath.Join(p.dir, strconv.FormatUint(uint64(gameID), 10)+".yaml")

	data, err := afero.ReadFile(p.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return GameData{}, fmt.Errorf("%w: game %d: no file at %s", domain.ErrUnknownGame, gameID, path)
	} else if err != nil {
		return GameData{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	game, err := ParseGameFile(data)
	if err != nil {
		return GameData{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if game.ID == 0 {
		game.ID = gameID
	} else if game.ID != gameID {
		return GameData{}, fmt.Errorf("%w: %s holds game %d, expected %d", domain.ErrInvalidDefinition, path, game.ID, gameID)
	}

	logging.FromContext(ctx).InfoContext(ctx, "Loaded local game definitions", "path", path, "achievements", len(game.Achievements))

	return GameData{
		Game:                 game,
		UnlockedAchievements: []uint32{},
	}, nil
}
