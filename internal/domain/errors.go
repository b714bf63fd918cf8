package domain

import "errors"

var (
	ErrInvalidDefinition      = errors.New("invalid definition")
	ErrUnknownAchievement     = errors.New("unknown achievement")
	ErrUnknownLeaderboard     = errors.New("unknown leaderboard")
	ErrUnknownGame            = errors.New("unknown game")
	ErrCorruptState           = errors.New("corrupt state")
	ErrNothingLoaded          = errors.New("no definitions loaded")
	ErrNotLoggedIn            = errors.New("not logged in")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
)
