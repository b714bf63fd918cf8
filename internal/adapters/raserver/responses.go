package raserver

import (
	"github.com/Amund211/cheevo/internal/domain"
)

// baseResponse is the envelope every dorequest endpoint returns
type baseResponse struct {
	Success bool   `json:"Success"`
	Error   string `json:"Error"`
}

type loginResponse struct {
	baseResponse
	User          string `json:"User"`
	DisplayName   string `json:"DisplayName"`
	Token         string `json:"Token"`
	Score         uint32 `json:"Score"`
	SoftcoreScore uint32 `json:"SoftcoreScore"`
	Messages      uint32 `json:"Messages"`
}

type patchAchievement struct {
	ID          uint32 `json:"ID"`
	MemAddr     string `json:"MemAddr"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	Points      uint32 `json:"Points"`
	Flags       int    `json:"Flags"`
}

type patchLeaderboard struct {
	ID            uint32 `json:"ID"`
	Mem           string `json:"Mem"`
	Format        string `json:"Format"`
	Title         string `json:"Title"`
	Description   string `json:"Description"`
	LowerIsBetter bool   `json:"LowerIsBetter"`
}

type patchData struct {
	ID                uint32             `json:"ID"`
	Title             string             `json:"Title"`
	ConsoleID         uint32             `json:"ConsoleID"`
	RichPresencePatch string             `json:"RichPresencePatch"`
	Achievements      []patchAchievement `json:"Achievements"`
	Leaderboards      []patchLeaderboard `json:"Leaderboards"`
}

type patchResponse struct {
	baseResponse
	PatchData patchData `json:"PatchData"`
}

type unlocksResponse struct {
	baseResponse
	UserUnlocks []uint32 `json:"UserUnlocks"`
}

type awardAchievementResponse struct {
	baseResponse
	Score                 uint32 `json:"Score"`
	AchievementID         uint32 `json:"AchievementID"`
	AchievementsRemaining uint32 `json:"AchievementsRemaining"`
}

type submitLeaderboardEntryResponse struct {
	baseResponse
	Response struct {
		Score     int64 `json:"Score"`
		BestScore int64 `json:"BestScore"`
		RankInfo  struct {
			Rank       uint32 `json:"Rank"`
			NumEntries uint32 `json:"NumEntries"`
		} `json:"RankInfo"`
	} `json:"Response"`
}

func (p patchData) toDomain() domain.GameDefinition {
	game := domain.GameDefinition{
		ID:           p.ID,
		Title:        p.Title,
		ConsoleID:    p.ConsoleID,
		RichPresence: p.RichPresencePatch,
		Achievements: make([]domain.AchievementDefinition, 0, len(p.Achievements)),
		Leaderboards: make([]domain.LeaderboardDefinition, 0, len(p.Leaderboards)),
	}

	for _, a := range p.Achievements {
		game.Achievements = append(game.Achievements, domain.AchievementDefinition{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Points:      a.Points,
			Category:    domain.AchievementCategory(a.Flags),
			MemAddr:     a.MemAddr,
		})
	}

	for _, lb := range p.Leaderboards {
		game.Leaderboards = append(game.Leaderboards, domain.LeaderboardDefinition{
			ID:            lb.ID,
			Title:         lb.Title,
			Description:   lb.Description,
			Format:        domain.ParseValueFormat(lb.Format),
			LowerIsBetter: lb.LowerIsBetter,
			Mem:           lb.Mem,
		})
	}

	return game
}
