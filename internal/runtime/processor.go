package runtime

import (
	"context"
	"fmt"
	"slices"

	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/logging"
	"github.com/Amund211/cheevo/internal/parsing"
	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type achievement struct {
	id        uint32
	signature uint64
	trigger   *triggerState
	state     domain.AchievementState
	// primed is set once the trigger has been observed false after activation
	primed bool
}

func (a *achievement) reinitialize() {
	a.trigger.resetHits()
	for _, c := range a.trigger.conditions() {
		c.left = memValue{}
		c.right = memValue{}
	}
	a.state = domain.AchievementActive
	a.primed = false
}

type leaderboard struct {
	id        uint32
	signature uint64
	start     *triggerState
	cancel    *triggerState
	submit    *triggerState
	value     *valueState
	state     domain.LeaderboardState
	current   int64
	// lastStart is the result of the start trigger on the previous frame
	lastStart bool
}

func (l *leaderboard) triggers() []*triggerState {
	return []*triggerState{l.start, l.cancel, l.submit}
}

func (l *leaderboard) conditions() []*conditionState {
	var conditions []*conditionState
	for _, t := range l.triggers() {
		conditions = append(conditions, t.conditions()...)
	}
	return append(conditions, l.value.conditions()...)
}

func (l *leaderboard) reinitialize() {
	for _, c := range l.conditions() {
		c.hits = 0
		c.left = memValue{}
		c.right = memValue{}
	}
	for _, operand := range l.value.termOperands() {
		*operand = memValue{}
	}
	l.state = domain.LeaderboardWaiting
	l.current = 0
	// A start condition that holds on activation must go false before the leaderboard starts
	l.lastStart = true
}

// Processor evaluates the active achievements and leaderboards once per frame.
// It is not safe for concurrent use: the frame loop owns it.
type Processor struct {
	mem Peeker

	achievements map[uint32]*achievement
	leaderboards map[uint32]*leaderboard
	// ids in ascending order
	achievementIDs []uint32
	leaderboardIDs []uint32

	richPresence *richPresenceState

	paused bool
}

func New(mem Peeker) *Processor {
	return &Processor{
		mem:          mem,
		achievements: map[uint32]*achievement{},
		leaderboards: map[uint32]*leaderboard{},
	}
}

// Signature identifies a definition string, so saved state can be matched against changed definitions
func Signature(definition string) uint64 {
	return xxhash.Sum64String(definition)
}

func insertSorted(ids []uint32, id uint32) []uint32 {
	index, found := slices.BinarySearch(ids, id)
	if found {
		return ids
	}
	return slices.Insert(ids, index, id)
}

func removeSorted(ids []uint32, id uint32) []uint32 {
	index, found := slices.BinarySearch(ids, id)
	if !found {
		return ids
	}
	return slices.Delete(ids, index, index+1)
}

// ActivateAchievement starts tracking an achievement. An already active achievement is replaced.
func (p *Processor) ActivateAchievement(def domain.AchievementDefinition) error {
	trigger, err := parsing.ParseTrigger(def.MemAddr)
	if err != nil {
		return fmt.Errorf("achievement %d: %w", def.ID, err)
	}

	p.achievements[def.ID] = &achievement{
		id:        def.ID,
		signature: Signature(def.MemAddr),
		trigger:   newTriggerState(trigger),
		state:     domain.AchievementActive,
	}
	p.achievementIDs = insertSorted(p.achievementIDs, def.ID)
	return nil
}

// ActivateLeaderboard starts tracking a leaderboard. An already active leaderboard is replaced.
func (p *Processor) ActivateLeaderboard(def domain.LeaderboardDefinition) error {
	conditions, err := parsing.ParseLeaderboard(def.Mem)
	if err != nil {
		return fmt.Errorf("leaderboard %d: %w", def.ID, err)
	}

	p.leaderboards[def.ID] = &leaderboard{
		id:        def.ID,
		signature: Signature(def.Mem),
		start:     newTriggerState(conditions.Start),
		cancel:    newTriggerState(conditions.Cancel),
		submit:    newTriggerState(conditions.Submit),
		value:     newValueState(conditions.Value),
		state:     domain.LeaderboardWaiting,
		lastStart: true,
	}
	p.leaderboardIDs = insertSorted(p.leaderboardIDs, def.ID)
	return nil
}

func (p *Processor) DeactivateAchievement(id uint32) {
	delete(p.achievements, id)
	p.achievementIDs = removeSorted(p.achievementIDs, id)
}

func (p *Processor) DeactivateLeaderboard(id uint32) {
	delete(p.leaderboards, id)
	p.leaderboardIDs = removeSorted(p.leaderboardIDs, id)
}

// ResetAchievement makes a triggered achievement active again and clears its hit counts
func (p *Processor) ResetAchievement(id uint32) error {
	a, ok := p.achievements[id]
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrUnknownAchievement, id)
	}
	a.reinitialize()
	return nil
}

// Reset reinitializes every tracked achievement and leaderboard
func (p *Processor) Reset() {
	for _, a := range p.achievements {
		a.reinitialize()
	}
	for _, l := range p.leaderboards {
		l.reinitialize()
	}
	if p.richPresence != nil {
		p.richPresence.reset()
	}
}

func (p *Processor) AchievementState(id uint32) domain.AchievementState {
	a, ok := p.achievements[id]
	if !ok {
		return domain.AchievementInactive
	}
	return a.state
}

func (p *Processor) LeaderboardState(id uint32) domain.LeaderboardState {
	l, ok := p.leaderboards[id]
	if !ok {
		return domain.LeaderboardInactive
	}
	return l.state
}

// LeaderboardValue is the value of the current attempt
func (p *Processor) LeaderboardValue(id uint32) (int64, bool) {
	l, ok := p.leaderboards[id]
	if !ok {
		return 0, false
	}
	return l.current, true
}

// AchievementHits returns the hit count of every condition of the achievement, core group first
func (p *Processor) AchievementHits(id uint32) ([]uint32, bool) {
	a, ok := p.achievements[id]
	if !ok {
		return nil, false
	}
	return hitCounts(a.trigger.conditions()), true
}

// LeaderboardHits returns the hit counts of the start, cancel and submit triggers and the value, in that order
func (p *Processor) LeaderboardHits(id uint32) ([]uint32, bool) {
	l, ok := p.leaderboards[id]
	if !ok {
		return nil, false
	}
	return hitCounts(l.conditions()), true
}

func hitCounts(conditions []*conditionState) []uint32 {
	hits := make([]uint32, 0, len(conditions))
	for _, c := range conditions {
		hits = append(hits, c.hits)
	}
	return hits
}

// Pause stops evaluation. Paused frames read no memory and leave all state untouched.
func (p *Processor) Pause() {
	p.paused = true
}

func (p *Processor) Resume() {
	p.paused = false
}

func (p *Processor) IsPaused() bool {
	return p.paused
}

// Process evaluates one frame and returns the changes it caused.
// Achievements are evaluated before leaderboards, each in ascending id order.
func (p *Processor) Process(ctx context.Context) []domain.Change {
	if p.paused {
		return nil
	}

	var changes []domain.Change

	for _, id := range p.achievementIDs {
		a := p.achievements[id]
		if a.state != domain.AchievementActive && a.state != domain.AchievementPaused {
			continue
		}
		changes = p.processAchievement(a, changes)
	}

	for _, id := range p.leaderboardIDs {
		l := p.leaderboards[id]
		if l.state != domain.LeaderboardWaiting && l.state != domain.LeaderboardActive {
			continue
		}
		changes = p.processLeaderboard(l, changes)
	}

	if p.richPresence != nil {
		p.richPresence.process(p.mem)
	}

	metrics.frameCount.Add(ctx, 1)
	for _, change := range changes {
		metrics.changeCount.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", change.Kind().String())))
	}
	if len(changes) > 0 {
		logging.FromContext(ctx).DebugContext(ctx, "Processed frame", "changes", len(changes))
	}

	return changes
}

func (p *Processor) processAchievement(a *achievement, changes []domain.Change) []domain.Change {
	a.trigger.refresh(p.mem)
	result := a.trigger.evaluate()

	if result.paused {
		a.state = domain.AchievementPaused
		return changes
	}
	a.state = domain.AchievementActive

	if result.reset && result.hadHits && a.primed {
		changes = append(changes, domain.AchievementReset{ID: a.id})
	}

	if !a.primed {
		if result.satisfied {
			a.trigger.resetHits()
		} else {
			a.primed = true
		}
		return changes
	}

	if result.satisfied {
		a.state = domain.AchievementStateTriggered
		changes = append(changes, domain.AchievementTriggered{ID: a.id})
	}

	return changes
}

func (p *Processor) processLeaderboard(l *leaderboard, changes []domain.Change) []domain.Change {
	for _, t := range l.triggers() {
		t.refresh(p.mem)
	}
	l.value.refresh(p.mem)

	start := l.start.evaluate().satisfied
	cancel := l.cancel.evaluate().satisfied
	submit := l.submit.evaluate().satisfied
	startEdge := start && !l.lastStart
	l.lastStart = start

	if l.state == domain.LeaderboardWaiting {
		if !startEdge || cancel {
			return changes
		}

		l.cancel.resetHits()
		l.submit.resetHits()
		l.value.resetHits()
		l.current = l.value.evaluate()
		l.state = domain.LeaderboardActive
		changes = append(changes, domain.LeaderboardStarted{ID: l.id, Score: l.current})

		if submit {
			changes = append(changes, domain.LeaderboardTriggered{ID: l.id, Score: l.current})
			l.state = domain.LeaderboardWaiting
		}
		return changes
	}

	if cancel {
		l.state = domain.LeaderboardWaiting
		return append(changes, domain.LeaderboardCanceled{ID: l.id})
	}

	value := l.value.evaluate()
	if submit {
		l.current = value
		l.state = domain.LeaderboardWaiting
		return append(changes, domain.LeaderboardTriggered{ID: l.id, Score: l.current})
	}

	if value != l.current {
		l.current = value
		changes = append(changes, domain.LeaderboardUpdated{ID: l.id, Score: l.current})
	}
	return changes
}
