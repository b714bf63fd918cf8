package api

import (
	"context"
	"fmt"

	"github.com/Amund211/cheevo/internal/domain"
)

type Result int

const (
	Success Result = iota
	// Failure is an authoritative rejection, e.g. bad credentials
	Failure
	// Incomplete is a transient failure, e.g. the server could not be reached
	Incomplete
)

func (r Result) String() string {
	switch r {
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	case Incomplete:
		return "Incomplete"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// Response is embedded in every response type
type Response struct {
	Result Result
	// ErrorMessage is a human readable reason when Result is not Success
	ErrorMessage string
}

func (r *Response) response() *Response {
	return r
}

func (r Response) Succeeded() bool {
	return r.Result == Success
}

type responsePtr[R any] interface {
	*R
	response() *Response
}

type Kind int

const (
	KindLogin Kind = iota
	KindLogout
	KindFetchGameData
	KindAwardAchievement
	KindSubmitLeaderboardEntry
)

func (k Kind) String() string {
	switch k {
	case KindLogin:
		return "Login"
	case KindLogout:
		return "Logout"
	case KindFetchGameData:
		return "FetchGameData"
	case KindAwardAchievement:
		return "AwardAchievement"
	case KindSubmitLeaderboardEntry:
		return "SubmitLeaderboardEntry"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Request is a single remote call producing a response of type R
type Request[R any] interface {
	Kind() Kind
	Call(ctx context.Context, server Server) R
}

// Server performs the remote calls. Implementations report transport problems as Incomplete.
type Server interface {
	Login(ctx context.Context, request LoginRequest) LoginResponse
	Logout(ctx context.Context, request LogoutRequest) LogoutResponse
	FetchGameData(ctx context.Context, request FetchGameDataRequest) FetchGameDataResponse
	AwardAchievement(ctx context.Context, request AwardAchievementRequest) AwardAchievementResponse
	SubmitLeaderboardEntry(ctx context.Context, request SubmitLeaderboardEntryRequest) SubmitLeaderboardEntryResponse
}

type Credentials struct {
	Username string
	APIToken string
}

type LoginRequest struct {
	Username string
	// Either Password or APIToken must be set
	Password string
	APIToken string
}

type LoginResponse struct {
	Response
	Username          string
	DisplayName       string
	APIToken          string
	Score             uint32
	SoftcoreScore     uint32
	NumUnreadMessages uint32
}

type LogoutRequest struct {
	Credentials Credentials
}

type LogoutResponse struct {
	Response
}

type FetchGameDataRequest struct {
	Credentials Credentials
	GameID      uint32
	// Hardcore selects which unlocks are returned
	Hardcore bool
}

type FetchGameDataResponse struct {
	Response
	Game domain.GameDefinition
	// UnlockedAchievements are the achievements the user already has for this game
	UnlockedAchievements []uint32
}

type AwardAchievementRequest struct {
	Credentials   Credentials
	AchievementID uint32
	Hardcore      bool
	GameHash      string
}

type AwardAchievementResponse struct {
	Response
	NewPlayerScore        uint32
	AchievementsRemaining uint32
}

type SubmitLeaderboardEntryRequest struct {
	Credentials   Credentials
	LeaderboardID uint32
	Score         int64
	GameHash      string
}

type SubmitLeaderboardEntryResponse struct {
	Response
	SubmittedScore int64
	BestScore      int64
	Rank           uint32
	NumEntries     uint32
}

func (LoginRequest) Kind() Kind                  { return KindLogin }
func (LogoutRequest) Kind() Kind                 { return KindLogout }
func (FetchGameDataRequest) Kind() Kind          { return KindFetchGameData }
func (AwardAchievementRequest) Kind() Kind       { return KindAwardAchievement }
func (SubmitLeaderboardEntryRequest) Kind() Kind { return KindSubmitLeaderboardEntry }

func (r LoginRequest) Call(ctx context.Context, server Server) LoginResponse {
	return server.Login(ctx, r)
}

func (r LogoutRequest) Call(ctx context.Context, server Server) LogoutResponse {
	return server.Logout(ctx, r)
}

func (r FetchGameDataRequest) Call(ctx context.Context, server Server) FetchGameDataResponse {
	return server.FetchGameData(ctx, r)
}

func (r AwardAchievementRequest) Call(ctx context.Context, server Server) AwardAchievementResponse {
	return server.AwardAchievement(ctx, r)
}

func (r SubmitLeaderboardEntryRequest) Call(ctx context.Context, server Server) SubmitLeaderboardEntryResponse {
	return server.SubmitLeaderboardEntry(ctx, r)
}
