package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Amund211/cheevo/internal/adapters/definitionprovider"
	"github.com/Amund211/cheevo/internal/adapters/raserver"
	"github.com/Amund211/cheevo/internal/adapters/sessionrepository"
	"github.com/Amund211/cheevo/internal/api"
	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/domaintest"
	"github.com/Amund211/cheevo/internal/memory"
	"github.com/Amund211/cheevo/internal/runtime"
	"github.com/Amund211/cheevo/internal/savestate"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testGameID = 1234

const leaderboardMem = "STA:0xH00=2::CAN:0xH01=1::SUB:0xH02=1::VAL:0xH03"

func testGame() domain.GameDefinition {
	return domaintest.NewGameBuilder(testGameID, "Test Game").
		WithAchievementDefinition(domain.AchievementDefinition{ID: 1, Title: "First", Description: "Set the flag", Points: 10, Category: domain.CategoryCore, MemAddr: "0xH00=1"}).
		WithAchievement(2, "Broken", 5, "bad").
		WithAchievementDefinition(domain.AchievementDefinition{ID: 3, Title: "Unofficial", Points: 5, Category: domain.CategoryUnofficial, MemAddr: "0xH04=1"}).
		WithAchievement(4, "Already", 25, "0xH05=1").
		WithAchievement(5, "Resettable", 1, "0xH06=1.3._R:0xH07=1").
		WithLeaderboard(7, "Speedrun", domain.FormatScore, leaderboardMem).
		WithRichPresence("Display:\nExploring\n").
		Build()
}

type mockedNotifier struct {
	mu            sync.Mutex
	notifications []Notification
	clears        int
}

func (n *mockedNotifier) Notify(ctx context.Context, notification Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
}

func (n *mockedNotifier) ClearPopups() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.clears++
}

func (n *mockedNotifier) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification{}, n.notifications...)
}

func (n *mockedNotifier) find(title string) (Notification, bool) {
	for _, notification := range n.all() {
		if notification.Title == title {
			return notification, true
		}
	}
	return Notification{}, false
}

func (n *mockedNotifier) clearCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clears
}

type mockedEmulator struct {
	pauses atomic.Int32
}

func (e *mockedEmulator) Pause() {
	e.pauses.Add(1)
}

func immediately(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

type allowAll struct{}

func (allowAll) Consume(key string) bool {
	return true
}

// scriptedServer answers logins from loginResults and forwards everything else to the mock server.
// Awards wait for awardGate when it is set.
type scriptedServer struct {
	api.Server

	t *testing.T

	mu           sync.Mutex
	loginResults []api.Result
	loginCalls   int
	score        uint32
	unread       uint32

	awardGate chan struct{}
}

func (s *scriptedServer) Login(ctx context.Context, request api.LoginRequest) api.LoginResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loginResults == nil {
		response := s.Server.Login(ctx, request)
		response.Score = s.score
		response.SoftcoreScore = s.score
		response.NumUnreadMessages = s.unread
		return response
	}

	require.Less(s.t, s.loginCalls, len(s.loginResults), "unexpected login call")
	result := s.loginResults[s.loginCalls]
	s.loginCalls++

	if result != api.Success {
		return api.LoginResponse{Response: api.Response{Result: result}}
	}
	return s.Server.Login(ctx, request)
}

func (s *scriptedServer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginCalls
}

func (s *scriptedServer) AwardAchievement(ctx context.Context, request api.AwardAchievementRequest) api.AwardAchievementResponse {
	if s.awardGate != nil {
		<-s.awardGate
	}
	return s.Server.AwardAchievement(ctx, request)
}

type testSession struct {
	*Session

	t        *testing.T
	buf      []byte
	server   *scriptedServer
	repo     *sessionrepository.Memory
	notifier *mockedNotifier
	emulator *mockedEmulator
}

func newTestSession(t *testing.T, settings Settings) *testSession {
	t.Helper()

	buf := make([]byte, 16)
	mem := memory.New()
	read, write := memory.SliceBank(buf)
	mem.Install(0, uint32(len(buf)), read, write)
	proc := runtime.New(mem)

	server := &scriptedServer{Server: raserver.NewMockServer(testGame()), t: t}
	client := api.NewClient(server, allowAll{}, api.WithAfterFunc(immediately))
	t.Cleanup(client.Close)

	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	repo := sessionrepository.NewMemory(func() time.Time { return now })
	notifier := &mockedNotifier{}
	emulator := &mockedEmulator{}

	session := NewSession(Dependencies{
		Processor:  proc,
		Serializer: savestate.New(proc, afero.NewMemMapFs()),
		Client:     client,
		Provider:   definitionprovider.NewRemote(client),
		Repository: repo,
		Emulator:   emulator,
		Notifier:   notifier,
		NowFunc:    func() time.Time { return now },
	}, settings)

	return &testSession{
		Session:  session,
		t:        t,
		buf:      buf,
		server:   server,
		repo:     repo,
		notifier: notifier,
		emulator: emulator,
	}
}

func (s *testSession) login() *testSession {
	s.t.Helper()
	require.NoError(s.t, s.AttemptLogin(s.t.Context(), api.LoginRequest{Username: "alice", Password: "hunter2"}, true))
	return s
}

func (s *testSession) activate() Activation {
	s.t.Helper()
	activation, err := s.ActivateGame(s.t.Context(), testGameID, "abc123")
	require.NoError(s.t, err)
	return activation
}

func (s *testSession) set(address int, value byte) *testSession {
	s.buf[address] = value
	return s
}

func (s *testSession) frame() []domain.Change {
	return s.DoFrame(s.t.Context())
}

func (s *testSession) unlocks() []uint32 {
	s.t.Helper()
	unlocks, err := s.repo.GetUnlocks(s.t.Context(), "alice", testGameID, s.Game.Hardcore())
	require.NoError(s.t, err)
	return unlocks
}
