package parsing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Amund211/cheevo/internal/domain"
)

func serializeOperand(operand domain.Operand) string {
	if operand.Kind == domain.OperandConstant {
		return strconv.FormatUint(uint64(operand.Value), 10)
	}

	var prefix string
	switch operand.Kind {
	case domain.OperandDelta:
		prefix = "d"
	case domain.OperandPrior:
		prefix = "p"
	}

	var code byte
	for c, size := range sizeCodes {
		if size == operand.Size {
			code = c
			break
		}
	}

	return fmt.Sprintf("%s0x%c%04x", prefix, code, operand.Address)
}

func serializeCondition(cond domain.Condition) string {
	var b strings.Builder
	for flag, condType := range conditionFlags {
		if condType == cond.Type {
			b.WriteByte(flag)
			b.WriteByte(':')
			break
		}
	}

	b.WriteString(serializeOperand(cond.Left))
	if cond.Operator == domain.OpNone {
		return b.String()
	}

	b.WriteString(cond.Operator.String())
	b.WriteString(serializeOperand(cond.Right))

	if cond.HitTarget > 0 {
		switch cond.HitMode {
		case domain.HitsConsecutive:
			fmt.Fprintf(&b, "(%d)", cond.HitTarget)
		default:
			fmt.Fprintf(&b, ".%d.", cond.HitTarget)
		}
	}

	return b.String()
}

func serializeGroup(group domain.ConditionGroup) string {
	conditions := make([]string, 0, len(group.Conditions))
	for _, cond := range group.Conditions {
		conditions = append(conditions, serializeCondition(cond))
	}
	return strings.Join(conditions, "_")
}

// SerializeTrigger is the inverse of ParseTrigger, producing the canonical spelling
func SerializeTrigger(trigger domain.Trigger) string {
	groups := make([]string, 0, 1+len(trigger.Alts))
	for _, group := range trigger.Groups() {
		groups = append(groups, serializeGroup(group))
	}
	return strings.Join(groups, "S")
}

// SerializeValue is the inverse of ParseValue, producing the canonical spelling
func SerializeValue(value domain.Value) string {
	alternatives := make([]string, 0, len(value.Alternatives))
	for _, alternative := range value.Alternatives {
		if alternative.Measured != nil {
			alternatives = append(alternatives, serializeGroup(*alternative.Measured))
			continue
		}

		terms := make([]string, 0, len(alternative.Terms))
		for _, term := range alternative.Terms {
			s := serializeOperand(term.Operand)
			if term.Multiplier != 1 {
				s += "*" + strconv.FormatFloat(term.Multiplier, 'f', -1, 64)
			}
			terms = append(terms, s)
		}
		alternatives = append(alternatives, strings.Join(terms, "_"))
	}
	return strings.Join(alternatives, "$")
}

// SerializeLeaderboard is the inverse of ParseLeaderboard
func SerializeLeaderboard(lb domain.LeaderboardConditions) string {
	return fmt.Sprintf(
		"STA:%s::CAN:%s::SUB:%s::VAL:%s",
		SerializeTrigger(lb.Start),
		SerializeTrigger(lb.Cancel),
		SerializeTrigger(lb.Submit),
		SerializeValue(lb.Value),
	)
}
