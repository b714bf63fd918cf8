package raserver

import (
	"context"
	"fmt"
	"sync"

	"github.com/Amund211/cheevo/internal/api"
	"github.com/Amund211/cheevo/internal/domain"
)

const mockToken = "mock-token"

// mockedServer accepts every login and award. Games are those passed to NewMockServer.
type mockedServer struct {
	mu      sync.Mutex
	games   map[uint32]domain.GameDefinition
	scores  map[string]uint32
	awarded map[string]map[uint32]bool
	best    map[uint32]int64
}

func NewMockServer(games ...domain.GameDefinition) *mockedServer {
	byID := make(map[uint32]domain.GameDefinition, len(games))
	for _, game := range games {
		byID[game.ID] = game
	}
	return &mockedServer{
		games:   byID,
		scores:  make(map[string]uint32),
		awarded: make(map[string]map[uint32]bool),
		best:    make(map[uint32]int64),
	}
}

func (s *mockedServer) authorized(credentials api.Credentials) bool {
	return credentials.Username != "" && credentials.APIToken == mockToken
}

func (s *mockedServer) Login(ctx context.Context, request api.LoginRequest) api.LoginResponse {
	if request.Username == "" || (request.Password == "" && request.APIToken == "") {
		return api.LoginResponse{Response: failure("username and password or token required")}
	}
	if request.APIToken != "" && request.APIToken != mockToken {
		return api.LoginResponse{Response: failure("invalid token")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return api.LoginResponse{
		Response:    api.Response{Result: api.Success},
		Username:    request.Username,
		DisplayName: request.Username,
		APIToken:    mockToken,
		Score:       s.scores[request.Username],
	}
}

func (s *mockedServer) Logout(ctx context.Context, request api.LogoutRequest) api.LogoutResponse {
	return api.LogoutResponse{Response: api.Response{Result: api.Success}}
}

func (s *mockedServer) FetchGameData(ctx context.Context, request api.FetchGameDataRequest) api.FetchGameDataResponse {
	if !s.authorized(request.Credentials) {
		return api.FetchGameDataResponse{Response: failure("invalid credentials")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[request.GameID]
	if !ok {
		return api.FetchGameDataResponse{Response: failure(fmt.Sprintf("unknown game %d", request.GameID))}
	}

	unlocked := []uint32{}
	for id := range s.awarded[request.Credentials.Username] {
		unlocked = append(unlocked, id)
	}

	return api.FetchGameDataResponse{
		Response:             api.Response{Result: api.Success},
		Game:                 game,
		UnlockedAchievements: unlocked,
	}
}

func (s *mockedServer) points(achievementID uint32) (uint32, uint32) {
	var points uint32
	var total uint32
	for _, game := range s.games {
		for _, achievement := range game.Achievements {
			if achievement.ID == achievementID {
				points = achievement.Points
				total = uint32(len(game.Achievements))
			}
		}
	}
	return points, total
}

func (s *mockedServer) AwardAchievement(ctx context.Context, request api.AwardAchievementRequest) api.AwardAchievementResponse {
	username := request.Credentials.Username
	if !s.authorized(request.Credentials) {
		return api.AwardAchievementResponse{Response: failure("invalid credentials")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.awarded[username] == nil {
		s.awarded[username] = make(map[uint32]bool)
	}
	if s.awarded[username][request.AchievementID] {
		return api.AwardAchievementResponse{Response: failure("User already has this achievement unlocked.")}
	}
	s.awarded[username][request.AchievementID] = true

	points, total := s.points(request.AchievementID)
	s.scores[username] += points

	remaining := uint32(0)
	if total > uint32(len(s.awarded[username])) {
		remaining = total - uint32(len(s.awarded[username]))
	}

	return api.AwardAchievementResponse{
		Response:              api.Response{Result: api.Success},
		NewPlayerScore:        s.scores[username],
		AchievementsRemaining: remaining,
	}
}

func (s *mockedServer) SubmitLeaderboardEntry(ctx context.Context, request api.SubmitLeaderboardEntryRequest) api.SubmitLeaderboardEntryResponse {
	if !s.authorized(request.Credentials) {
		return api.SubmitLeaderboardEntryResponse{Response: failure("invalid credentials")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	best, ok := s.best[request.LeaderboardID]
	if !ok || request.Score > best {
		best = request.Score
		s.best[request.LeaderboardID] = best
	}

	return api.SubmitLeaderboardEntryResponse{
		Response:       api.Response{Result: api.Success},
		SubmittedScore: request.Score,
		BestScore:      best,
		Rank:           1,
		NumEntries:     1,
	}
}

var _ api.Server = (*mockedServer)(nil)
var _ api.Server = (*raServer)(nil)
