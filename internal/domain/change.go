package domain

import "fmt"

type ChangeKind int

const (
	ChangeAchievementReset ChangeKind = iota
	ChangeAchievementTriggered
	ChangeLeaderboardStarted
	ChangeLeaderboardUpdated
	ChangeLeaderboardCanceled
	ChangeLeaderboardTriggered
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAchievementReset:
		return "AchievementReset"
	case ChangeAchievementTriggered:
		return "AchievementTriggered"
	case ChangeLeaderboardStarted:
		return "LeaderboardStarted"
	case ChangeLeaderboardUpdated:
		return "LeaderboardUpdated"
	case ChangeLeaderboardCanceled:
		return "LeaderboardCanceled"
	case ChangeLeaderboardTriggered:
		return "LeaderboardTriggered"
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// Change is a single state transition produced by one evaluation frame.
//
// The concrete types are AchievementReset, AchievementTriggered, LeaderboardStarted,
// LeaderboardUpdated, LeaderboardCanceled and LeaderboardTriggered. Consumers are
// expected to type switch on them.
type Change interface {
	Kind() ChangeKind
	SubjectID() uint32
	// Value is the associated value, zero for kinds that carry none
	Value() int64

	isChange()
}

type AchievementReset struct {
	ID uint32
}

type AchievementTriggered struct {
	ID uint32
}

type LeaderboardStarted struct {
	ID    uint32
	Score int64
}

type LeaderboardUpdated struct {
	ID    uint32
	Score int64
}

type LeaderboardCanceled struct {
	ID uint32
}

type LeaderboardTriggered struct {
	ID    uint32
	Score int64
}

func (c AchievementReset) Kind() ChangeKind     { return ChangeAchievementReset }
func (c AchievementTriggered) Kind() ChangeKind { return ChangeAchievementTriggered }
func (c LeaderboardStarted) Kind() ChangeKind   { return ChangeLeaderboardStarted }
func (c LeaderboardUpdated) Kind() ChangeKind   { return ChangeLeaderboardUpdated }
func (c LeaderboardCanceled) Kind() ChangeKind  { return ChangeLeaderboardCanceled }
func (c LeaderboardTriggered) Kind() ChangeKind { return ChangeLeaderboardTriggered }

func (c AchievementReset) SubjectID() uint32     { return c.ID }
func (c AchievementTriggered) SubjectID() uint32 { return c.ID }
func (c LeaderboardStarted) SubjectID() uint32   { return c.ID }
func (c LeaderboardUpdated) SubjectID() uint32   { return c.ID }
func (c LeaderboardCanceled) SubjectID() uint32  { return c.ID }
func (c LeaderboardTriggered) SubjectID() uint32 { return c.ID }

func (c AchievementReset) Value() int64     { return 0 }
func (c AchievementTriggered) Value() int64 { return 0 }
func (c LeaderboardStarted) Value() int64   { return c.Score }
func (c LeaderboardUpdated) Value() int64   { return c.Score }
func (c LeaderboardCanceled) Value() int64  { return 0 }
func (c LeaderboardTriggered) Value() int64 { return c.Score }

func (AchievementReset) isChange()     {}
func (AchievementTriggered) isChange() {}
func (LeaderboardStarted) isChange()   {}
func (LeaderboardUpdated) isChange()   {}
func (LeaderboardCanceled) isChange()  {}
func (LeaderboardTriggered) isChange() {}

// FormatChange renders a change as the `{type, id, value}` tuple
func FormatChange(c Change) string {
	return fmt.Sprintf("{%s, %d, %d}", c.Kind(), c.SubjectID(), c.Value())
}
