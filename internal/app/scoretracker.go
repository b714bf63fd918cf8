package app

import (
	"cmp"
	"slices"
	"sync"
)

// ScoreTracker is the displayed value of an in-progress leaderboard attempt
type ScoreTracker struct {
	LeaderboardID uint32
	Display       string
}

type ScoreTrackers struct {
	mu       sync.Mutex
	trackers map[uint32]string
}

func NewScoreTrackers() *ScoreTrackers {
	return &ScoreTrackers{trackers: map[uint32]string{}}
}

func (s *ScoreTrackers) Create(id uint32, display string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackers[id] = display
}

// Update changes the display of an existing tracker, it does nothing if there is none
func (s *ScoreTrackers) Update(id uint32, display string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trackers[id]; !ok {
		return false
	}
	s.trackers[id] = display
	return true
}

func (s *ScoreTrackers) Remove(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.trackers[id]
	delete(s.trackers, id)
	return ok
}

func (s *ScoreTrackers) Get(id uint32) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	display, ok := s.trackers[id]
	return display, ok
}

// All returns the trackers ordered by leaderboard id
func (s *ScoreTrackers) All() []ScoreTracker {
	s.mu.Lock()
	defer s.mu.Unlock()

	trackers := make([]ScoreTracker, 0, len(s.trackers))
	for id, display := range s.trackers {
		trackers = append(trackers, ScoreTracker{LeaderboardID: id, Display: display})
	}
	slices.SortFunc(trackers, func(a, b ScoreTracker) int {
		return cmp.Compare(a.LeaderboardID, b.LeaderboardID)
	})
	return trackers
}

func (s *ScoreTrackers) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.trackers)
}
