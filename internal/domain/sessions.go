package domain

import "time"

// GameSession is one play session of a game by a user
type GameSession struct {
	ID        string
	Username  string
	GameID    uint32
	StartedAt time.Time
}
