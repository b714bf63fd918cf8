package domain

import (
	"time"
)

// User is the persisted record of a user playing on this client
type User struct {
	Username    string
	FirstSeenAt time.Time
	LastSeenAt  time.Time
	SeenCount   int64
}

// Unlock records an achievement awarded to a user
type Unlock struct {
	Username      string
	GameID        uint32
	AchievementID uint32
	Hardcore      bool
	UnlockedAt    time.Time
}
