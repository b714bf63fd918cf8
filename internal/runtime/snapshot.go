package runtime

import "github.com/Amund211/cheevo/internal/domain"

type EntityKind int

const (
	EntityAchievement EntityKind = iota
	EntityLeaderboard
)

type OperandSnapshot struct {
	Current  uint32
	Previous uint32
	Prior    uint32
	Valid    bool
}

type ConditionSnapshot struct {
	Hits  uint32
	Left  OperandSnapshot
	Right OperandSnapshot
}

// EntitySnapshot is the mutable state of one achievement or leaderboard.
// Edge holds primed for achievements and the previous start result for leaderboards.
type EntitySnapshot struct {
	Kind          EntityKind
	ID            uint32
	Signature     uint64
	State         int
	Edge          bool
	Value         int64
	Conditions    []ConditionSnapshot
	ValueOperands []OperandSnapshot
}

type Snapshot struct {
	Entities []EntitySnapshot
}

func snapshotMemValue(m memValue) OperandSnapshot {
	return OperandSnapshot{Current: m.current, Previous: m.previous, Prior: m.prior, Valid: m.valid}
}

func (s OperandSnapshot) memValue() memValue {
	return memValue{current: s.Current, previous: s.Previous, prior: s.Prior, valid: s.Valid}
}

func snapshotConditions(conditions []*conditionState) []ConditionSnapshot {
	snapshots := make([]ConditionSnapshot, 0, len(conditions))
	for _, c := range conditions {
		snapshots = append(snapshots, ConditionSnapshot{
			Hits:  c.hits,
			Left:  snapshotMemValue(c.left),
			Right: snapshotMemValue(c.right),
		})
	}
	return snapshots
}

func applyConditions(conditions []*conditionState, snapshots []ConditionSnapshot) {
	for i, c := range conditions {
		c.hits = snapshots[i].Hits
		c.left = snapshots[i].Left.memValue()
		c.right = snapshots[i].Right.memValue()
	}
}

// HasEntities reports whether anything is loaded
func (p *Processor) HasEntities() bool {
	return len(p.achievements) > 0 || len(p.leaderboards) > 0
}

// Snapshot captures the mutable state of every tracked achievement and leaderboard
func (p *Processor) Snapshot() Snapshot {
	snapshot := Snapshot{}

	for _, id := range p.achievementIDs {
		a := p.achievements[id]
		snapshot.Entities = append(snapshot.Entities, EntitySnapshot{
			Kind:       EntityAchievement,
			ID:         a.id,
			Signature:  a.signature,
			State:      int(a.state),
			Edge:       a.primed,
			Conditions: snapshotConditions(a.trigger.conditions()),
		})
	}

	for _, id := range p.leaderboardIDs {
		l := p.leaderboards[id]
		operands := l.value.termOperands()
		valueOperands := make([]OperandSnapshot, 0, len(operands))
		for _, operand := range operands {
			valueOperands = append(valueOperands, snapshotMemValue(*operand))
		}

		snapshot.Entities = append(snapshot.Entities, EntitySnapshot{
			Kind:          EntityLeaderboard,
			ID:            l.id,
			Signature:     l.signature,
			State:         int(l.state),
			Edge:          l.lastStart,
			Value:         l.current,
			Conditions:    snapshotConditions(l.conditions()),
			ValueOperands: valueOperands,
		})
	}

	return snapshot
}

// Apply restores state captured by Snapshot. It never emits changes.
//
// Entities whose record is missing or no longer matches the definition are reinitialized,
// records for entities that are not tracked are ignored. Triggered achievements stay triggered,
// and a record can not mark an achievement as triggered.
func (p *Processor) Apply(snapshot Snapshot) {
	type key struct {
		kind EntityKind
		id   uint32
	}
	records := make(map[key]EntitySnapshot, len(snapshot.Entities))
	for _, entity := range snapshot.Entities {
		records[key{entity.Kind, entity.ID}] = entity
	}

	for _, id := range p.achievementIDs {
		a := p.achievements[id]
		if a.state == domain.AchievementStateTriggered {
			continue
		}

		record, ok := records[key{EntityAchievement, id}]
		conditions := a.trigger.conditions()
		if !ok || record.Signature != a.signature || len(record.Conditions) != len(conditions) {
			a.reinitialize()
			continue
		}

		applyConditions(conditions, record.Conditions)
		switch state := domain.AchievementState(record.State); state {
		case domain.AchievementActive, domain.AchievementPaused:
			a.state = state
			a.primed = record.Edge
		default:
			a.state = domain.AchievementActive
			a.primed = false
		}
	}

	for _, id := range p.leaderboardIDs {
		l := p.leaderboards[id]

		record, ok := records[key{EntityLeaderboard, id}]
		conditions := l.conditions()
		operands := l.value.termOperands()
		if !ok ||
			record.Signature != l.signature ||
			len(record.Conditions) != len(conditions) ||
			len(record.ValueOperands) != len(operands) {
			l.reinitialize()
			continue
		}

		applyConditions(conditions, record.Conditions)
		for i, operand := range operands {
			*operand = record.ValueOperands[i].memValue()
		}

		switch state := domain.LeaderboardState(record.State); state {
		case domain.LeaderboardWaiting, domain.LeaderboardActive:
			l.state = state
		default:
			l.state = domain.LeaderboardWaiting
		}
		l.current = record.Value
		l.lastStart = record.Edge
	}
}
