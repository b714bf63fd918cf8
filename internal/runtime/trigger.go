package runtime

import (
	"math"

	"github.com/Amund211/cheevo/internal/domain"
)

type conditionState struct {
	cond  domain.Condition
	hits  uint32
	left  memValue
	right memValue
}

func (c *conditionState) refresh(mem Peeker) {
	c.left.refresh(mem, c.cond.Left)
	c.right.refresh(mem, c.cond.Right)
}

func (c *conditionState) addHit() {
	if c.cond.HitTarget > 0 && c.hits >= c.cond.HitTarget {
		return
	}
	if c.hits == math.MaxUint32 {
		return
	}
	c.hits++
}

// chain is a run of modifier conditions ending in a terminal condition
type chain []*conditionState

func (ch chain) terminal() *conditionState {
	return ch[len(ch)-1]
}

type chainResult struct {
	satisfied bool
	// measured is the value of a Measured terminal
	measured int64
}

func (ch chain) evaluate() chainResult {
	var (
		source   int64
		addHits  uint32
		combine  domain.ConditionType
		previous bool
		pending  bool
	)

	for _, c := range ch {
		left, leftOK := c.left.value(c.cond.Left)
		right, rightOK := c.right.value(c.cond.Right)
		valid := leftOK && rightOK

		switch c.cond.Type {
		case domain.CondAddSource:
			if leftOK {
				source += left
			}
			continue
		case domain.CondSubSource:
			if leftOK {
				source -= left
			}
			continue
		}

		left += source
		source = 0

		truth := valid && c.cond.Operator.Compare(left, right)
		if pending {
			switch combine {
			case domain.CondAndNext:
				truth = truth && previous
			case domain.CondOrNext:
				truth = truth || previous
			}
			pending = false
		}

		if truth {
			c.addHit()
		} else if c.cond.HitMode == domain.HitsConsecutive {
			c.hits = 0
		}

		satisfied := truth
		if c.cond.HitTarget > 0 {
			satisfied = uint64(c.hits)+uint64(addHits) >= uint64(c.cond.HitTarget)
		}

		switch c.cond.Type {
		case domain.CondAndNext, domain.CondOrNext:
			combine = c.cond.Type
			previous = satisfied
			pending = true
			continue
		case domain.CondAddHits:
			addHits += c.hits
			continue
		}

		result := chainResult{satisfied: satisfied}
		if c.cond.Type == domain.CondMeasured {
			if c.cond.Operator == domain.OpNone {
				result.measured = left
			} else {
				result.measured = int64(c.hits)
			}
		}
		return result
	}

	return chainResult{}
}

type groupState struct {
	conditions []*conditionState
	chains     []chain
}

func newGroupState(group domain.ConditionGroup) groupState {
	g := groupState{}
	var current chain
	for _, cond := range group.Conditions {
		state := &conditionState{cond: cond}
		g.conditions = append(g.conditions, state)
		current = append(current, state)
		if !cond.Type.IsModifier() {
			g.chains = append(g.chains, current)
			current = nil
		}
	}
	return g
}

func (g *groupState) refresh(mem Peeker) {
	for _, c := range g.conditions {
		c.refresh(mem)
	}
}

func (g *groupState) resetHits() {
	for _, c := range g.conditions {
		c.hits = 0
	}
}

// evaluatePause runs the PauseIf chains and reports whether the group is paused
func (g *groupState) evaluatePause() bool {
	paused := false
	for _, ch := range g.chains {
		if ch.terminal().cond.Type != domain.CondPauseIf {
			continue
		}
		if ch.evaluate().satisfied {
			paused = true
		}
	}
	return paused
}

type groupResult struct {
	satisfied bool
	reset     bool
	measured  int64
}

// evaluate runs every chain except the PauseIf chains
func (g *groupState) evaluate() groupResult {
	result := groupResult{satisfied: true}
	for _, ch := range g.chains {
		switch ch.terminal().cond.Type {
		case domain.CondPauseIf:
			continue
		case domain.CondResetIf:
			if ch.evaluate().satisfied {
				result.reset = true
			}
		case domain.CondMeasured:
			chainResult := ch.evaluate()
			result.measured = chainResult.measured
			result.satisfied = result.satisfied && chainResult.satisfied
		default:
			result.satisfied = result.satisfied && ch.evaluate().satisfied
		}
	}
	return result
}

type triggerState struct {
	// groups[0] is the core group
	groups []groupState
}

func newTriggerState(trigger domain.Trigger) *triggerState {
	t := &triggerState{}
	for _, group := range trigger.Groups() {
		t.groups = append(t.groups, newGroupState(group))
	}
	return t
}

func (t *triggerState) refresh(mem Peeker) {
	for i := range t.groups {
		t.groups[i].refresh(mem)
	}
}

func (t *triggerState) resetHits() {
	for i := range t.groups {
		t.groups[i].resetHits()
	}
}

func (t *triggerState) conditions() []*conditionState {
	var conditions []*conditionState
	for _, g := range t.groups {
		conditions = append(conditions, g.conditions...)
	}
	return conditions
}

type triggerResult struct {
	satisfied bool
	// paused is set when the core group is paused
	paused bool
	// reset is set when a ResetIf fired this frame
	reset bool
	// hadHits is set when any condition had hits before this frame
	hadHits bool
}

func (t *triggerState) hasHits() bool {
	for _, c := range t.conditions() {
		if c.hits > 0 {
			return true
		}
	}
	return false
}

func (t *triggerState) evaluate() triggerResult {
	hadHits := t.hasHits()

	paused := make([]bool, len(t.groups))
	for i := range t.groups {
		paused[i] = t.groups[i].evaluatePause()
	}

	var (
		coreSatisfied bool
		anyAlt        bool
		reset         bool
	)
	for i := range t.groups {
		if paused[i] {
			continue
		}
		result := t.groups[i].evaluate()
		if result.reset {
			reset = true
		}
		if i == 0 {
			coreSatisfied = result.satisfied
		} else if result.satisfied {
			anyAlt = true
		}
	}

	if reset {
		t.resetHits()
		return triggerResult{paused: paused[0], reset: true, hadHits: hadHits}
	}

	satisfied := !paused[0] && coreSatisfied && (len(t.groups) == 1 || anyAlt)
	return triggerResult{satisfied: satisfied, paused: paused[0]}
}
