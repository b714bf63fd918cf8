package domain

type AchievementState int

const (
	AchievementInactive AchievementState = iota
	AchievementActive
	AchievementPaused
	AchievementStateTriggered
)

func (s AchievementState) String() string {
	switch s {
	case AchievementInactive:
		return "Inactive"
	case AchievementActive:
		return "Active"
	case AchievementPaused:
		return "Paused"
	case AchievementStateTriggered:
		return "Triggered"
	}
	return "Unknown"
}

type LeaderboardState int

const (
	LeaderboardInactive LeaderboardState = iota
	LeaderboardWaiting
	LeaderboardActive
	LeaderboardStateTriggered
)

func (s LeaderboardState) String() string {
	switch s {
	case LeaderboardInactive:
		return "Inactive"
	case LeaderboardWaiting:
		return "Waiting"
	case LeaderboardActive:
		return "Active"
	case LeaderboardStateTriggered:
		return "Triggered"
	}
	return "Unknown"
}

type AchievementCategory int

const (
	CategoryCore       AchievementCategory = 3
	CategoryUnofficial AchievementCategory = 5
	CategoryLocal      AchievementCategory = 0
)

// AchievementDefinition is an achievement as published for a game.
// MemAddr holds the serialized trigger, see the parsing package.
type AchievementDefinition struct {
	ID          uint32
	Title       string
	Description string
	Points      uint32
	Category    AchievementCategory
	MemAddr     string
}

// LeaderboardDefinition is a leaderboard as published for a game.
// Mem holds the serialized STA/CAN/SUB/VAL sections, see the parsing package.
type LeaderboardDefinition struct {
	ID            uint32
	Title         string
	Description   string
	Format        ValueFormat
	LowerIsBetter bool
	Mem           string
}

type GameDefinition struct {
	ID           uint32
	Title        string
	ConsoleID    uint32
	Achievements []AchievementDefinition
	Leaderboards []LeaderboardDefinition
	RichPresence string
}

// LeaderboardConditions is the parsed form of LeaderboardDefinition.Mem
type LeaderboardConditions struct {
	Start  Trigger
	Cancel Trigger
	Submit Trigger
	Value  Value
}
