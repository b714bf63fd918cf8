package sessionrepository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Amund211/cheevo/internal/domain"
	"github.com/google/uuid"
)

type unlockKey struct {
	username string
	gameID   uint32
	hardcore bool
}

// Memory keeps everything in process, for tools that don't persist anything
type Memory struct {
	mu       sync.Mutex
	nowFunc  func() time.Time
	users    map[string]domain.User
	sessions []domain.GameSession
	unlocks  map[unlockKey][]uint32
}

func NewMemory(nowFunc func() time.Time) *Memory {
	return &Memory{
		nowFunc: nowFunc,
		users:   make(map[string]domain.User),
		unlocks: make(map[unlockKey][]uint32),
	}
}

func (m *Memory) RegisterUser(ctx context.Context, username string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFunc()
	user, ok := m.users[username]
	if !ok {
		user = domain.User{Username: username, FirstSeenAt: now}
	}
	user.LastSeenAt = now
	user.SeenCount++
	m.users[username] = user
	return user, nil
}

func (m *Memory) StartSession(ctx context.Context, username string, gameID uint32) (domain.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := domain.GameSession{
		ID:        uuid.NewString(),
		Username:  username,
		GameID:    gameID,
		StartedAt: m.nowFunc(),
	}
	m.sessions = append(m.sessions, session)
	return session, nil
}

func (m *Memory) RecordUnlock(ctx context.Context, unlock domain.Unlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := unlockKey{username: unlock.Username, gameID: unlock.GameID, hardcore: unlock.Hardcore}
	if slices.Contains(m.unlocks[key], unlock.AchievementID) {
		return nil
	}
	m.unlocks[key] = append(m.unlocks[key], unlock.AchievementID)
	slices.Sort(m.unlocks[key])
	return nil
}

func (m *Memory) GetUnlocks(ctx context.Context, username string, gameID uint32, hardcore bool) ([]uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]uint32{}, m.unlocks[unlockKey{username: username, gameID: gameID, hardcore: hardcore}]...), nil
}

// Sessions returns the sessions started so far
func (m *Memory) Sessions() []domain.GameSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.sessions)
}

var _ SessionRepository = (*Memory)(nil)
