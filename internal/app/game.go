package app

import (
	"sync"

	"github.com/Amund211/cheevo/internal/domain"
)

type Settings struct {
	Hardcore                       bool
	LeaderboardNotifications       bool
	LeaderboardCancelNotifications bool
	// IncludeUnofficial activates unofficial achievements. They are never submitted.
	IncludeUnofficial bool
}

func DefaultSettings() Settings {
	return Settings{
		Hardcore:                       false,
		LeaderboardNotifications:       true,
		LeaderboardCancelNotifications: true,
		IncludeUnofficial:              false,
	}
}

// GameContext holds the definitions of the loaded game and what happened to them this session
type GameContext struct {
	mu sync.Mutex

	settings Settings

	gameID       uint32
	title        string
	hash         string
	achievements map[uint32]domain.AchievementDefinition
	leaderboards map[uint32]domain.LeaderboardDefinition

	awarded            map[uint32]bool
	unlockRichPresence map[uint32]string

	pauseOnTrigger map[uint32]bool
	pauseOnReset   map[uint32]bool
}

func NewGameContext(settings Settings) *GameContext {
	g := &GameContext{settings: settings}
	g.clear()
	return g
}

func (g *GameContext) clear() {
	g.gameID = 0
	g.title = ""
	g.hash = ""
	g.achievements = map[uint32]domain.AchievementDefinition{}
	g.leaderboards = map[uint32]domain.LeaderboardDefinition{}
	g.awarded = map[uint32]bool{}
	g.unlockRichPresence = map[uint32]string{}
	g.pauseOnTrigger = map[uint32]bool{}
	g.pauseOnReset = map[uint32]bool{}
}

// load replaces the loaded game. Pause flags do not carry over.
func (g *GameContext) load(game domain.GameDefinition, hash string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.clear()
	g.gameID = game.ID
	g.title = game.Title
	g.hash = hash
	for _, achievement := range game.Achievements {
		g.achievements[achievement.ID] = achievement
	}
	for _, leaderboard := range game.Leaderboards {
		g.leaderboards[leaderboard.ID] = leaderboard
	}
}

func (g *GameContext) GameID() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gameID
}

func (g *GameContext) Title() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.title
}

func (g *GameContext) Hash() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hash
}

func (g *GameContext) Achievement(id uint32) (domain.AchievementDefinition, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	def, ok := g.achievements[id]
	return def, ok
}

func (g *GameContext) Leaderboard(id uint32) (domain.LeaderboardDefinition, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	def, ok := g.leaderboards[id]
	return def, ok
}

func (g *GameContext) achievementIDs() []uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]uint32, 0, len(g.achievements))
	for id := range g.achievements {
		ids = append(ids, id)
	}
	return ids
}

func (g *GameContext) leaderboardIDs() []uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]uint32, 0, len(g.leaderboards))
	for id := range g.leaderboards {
		ids = append(ids, id)
	}
	return ids
}

func (g *GameContext) Settings() Settings {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.settings
}

func (g *GameContext) Hardcore() bool {
	return g.Settings().Hardcore
}

// DisableHardcore turns hardcore off and reports whether it was on
func (g *GameContext) DisableHardcore() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	wasHardcore := g.settings.Hardcore
	g.settings.Hardcore = false
	return wasHardcore
}

func (g *GameContext) SetPauseOnTrigger(id uint32, pause bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pauseOnTrigger[id] = pause
}

func (g *GameContext) SetPauseOnReset(id uint32, pause bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pauseOnReset[id] = pause
}

func (g *GameContext) PauseOnTrigger(id uint32) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pauseOnTrigger[id]
}

func (g *GameContext) PauseOnReset(id uint32) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pauseOnReset[id]
}

// markAwarded records the award and the rich presence at the time. It returns false if it was already awarded.
func (g *GameContext) markAwarded(id uint32, richPresence string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.awarded[id] {
		return false
	}
	g.awarded[id] = true
	g.unlockRichPresence[id] = richPresence
	return true
}

func (g *GameContext) IsAwarded(id uint32) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.awarded[id]
}

// UnlockRichPresence is the rich presence text captured when the achievement was awarded this session
func (g *GameContext) UnlockRichPresence(id uint32) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	text, ok := g.unlockRichPresence[id]
	return text, ok
}
