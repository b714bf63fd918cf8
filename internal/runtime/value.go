package runtime

import (
	"math"

	"github.com/Amund211/cheevo/internal/domain"
)

type termState struct {
	term domain.ValueTerm
	mem  memValue
}

type alternativeState struct {
	terms    []*termState
	measured *groupState
}

type valueState struct {
	alternatives []alternativeState
}

func newValueState(value domain.Value) *valueState {
	v := &valueState{}
	for _, alternative := range value.Alternatives {
		state := alternativeState{}
		if alternative.Measured != nil {
			group := newGroupState(*alternative.Measured)
			state.measured = &group
		}
		for _, term := range alternative.Terms {
			state.terms = append(state.terms, &termState{term: term})
		}
		v.alternatives = append(v.alternatives, state)
	}
	return v
}

func (v *valueState) refresh(mem Peeker) {
	for _, alternative := range v.alternatives {
		for _, term := range alternative.terms {
			term.mem.refresh(mem, term.term.Operand)
		}
		if alternative.measured != nil {
			alternative.measured.refresh(mem)
		}
	}
}

func (v *valueState) resetHits() {
	for _, alternative := range v.alternatives {
		if alternative.measured != nil {
			alternative.measured.resetHits()
		}
	}
}

// termOperands returns the tracked memory of every term, in definition order
func (v *valueState) termOperands() []*memValue {
	var operands []*memValue
	for _, alternative := range v.alternatives {
		for _, term := range alternative.terms {
			operands = append(operands, &term.mem)
		}
	}
	return operands
}

func (v *valueState) conditions() []*conditionState {
	var conditions []*conditionState
	for _, alternative := range v.alternatives {
		if alternative.measured != nil {
			conditions = append(conditions, alternative.measured.conditions...)
		}
	}
	return conditions
}

// evaluate computes the value. Terms reading unavailable memory count as zero.
func (v *valueState) evaluate() int64 {
	best := int64(math.MinInt64)
	for _, alternative := range v.alternatives {
		var value int64
		if alternative.measured != nil {
			result := alternative.measured.evaluate()
			if result.reset {
				alternative.measured.resetHits()
			}
			value = result.measured
		} else {
			var sum float64
			for _, term := range alternative.terms {
				operand, ok := term.mem.value(term.term.Operand)
				if !ok {
					continue
				}
				sum += float64(operand) * term.term.Multiplier
			}
			value = int64(sum)
		}

		if value > best {
			best = value
		}
	}

	if best == math.MinInt64 {
		return 0
	}
	return best
}
