package parsing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Amund211/cheevo/internal/domain"
)

var sizeCodes = map[byte]domain.MemSize{
	'M': domain.SizeBit0,
	'N': domain.SizeBit1,
	'O': domain.SizeBit2,
	'P': domain.SizeBit3,
	'Q': domain.SizeBit4,
	'R': domain.SizeBit5,
	'S': domain.SizeBit6,
	'T': domain.SizeBit7,
	'L': domain.SizeLower4,
	'U': domain.SizeUpper4,
	'H': domain.Size8Bit,
	' ': domain.Size16Bit,
	'W': domain.Size24Bit,
	'X': domain.Size32Bit,
	'I': domain.Size16BitBE,
	'J': domain.Size24BitBE,
	'G': domain.Size32BitBE,
	'K': domain.SizeBitCount,
}

var conditionFlags = map[byte]domain.ConditionType{
	'R': domain.CondResetIf,
	'P': domain.CondPauseIf,
	'A': domain.CondAddSource,
	'B': domain.CondSubSource,
	'C': domain.CondAddHits,
	'N': domain.CondAndNext,
	'O': domain.CondOrNext,
	'M': domain.CondMeasured,
}

type parser struct {
	input string
	pos   int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf(
		"%w: %s at position %d in %q",
		domain.ErrInvalidDefinition, fmt.Sprintf(format, args...), p.pos, p.input,
	)
}

func (p *parser) done() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() byte {
	if p.done() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) consume(prefix string) bool {
	if strings.HasPrefix(p.input[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func (p *parser) takeWhile(pred func(byte) bool) string {
	start := p.pos
	for !p.done() && pred(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *parser) parseUint(digits string, base int) (uint32, error) {
	value, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, p.errorf("invalid number %q", digits)
	}
	return uint32(value), nil
}

func (p *parser) parseOperand() (domain.Operand, error) {
	kind := domain.OperandMemory
	if strings.HasPrefix(p.input[p.pos:], "d0x") {
		kind = domain.OperandDelta
		p.pos++
	} else if strings.HasPrefix(p.input[p.pos:], "p0x") {
		kind = domain.OperandPrior
		p.pos++
	}

	if p.consume("0x") || p.consume("0X") {
		size := domain.Size16Bit
		if code, ok := sizeCodes[p.peek()]; ok {
			size = code
			p.pos++
		} else if !isHexDigit(p.peek()) {
			return domain.Operand{}, p.errorf("unknown memory size %q", p.peek())
		}

		digits := p.takeWhile(isHexDigit)
		if digits == "" {
			return domain.Operand{}, p.errorf("expected address")
		}
		address, err := p.parseUint(digits, 16)
		if err != nil {
			return domain.Operand{}, err
		}
		return domain.Operand{Kind: kind, Size: size, Address: address}, nil
	}

	if p.consume("h") || p.consume("H") {
		digits := p.takeWhile(isHexDigit)
		if digits == "" {
			return domain.Operand{}, p.errorf("expected hex constant")
		}
		value, err := p.parseUint(digits, 16)
		if err != nil {
			return domain.Operand{}, err
		}
		return domain.Constant(value), nil
	}

	digits := p.takeWhile(isDigit)
	if digits == "" {
		return domain.Operand{}, p.errorf("expected operand")
	}
	value, err := p.parseUint(digits, 10)
	if err != nil {
		return domain.Operand{}, err
	}
	return domain.Constant(value), nil
}

func (p *parser) parseOperator() (domain.Operator, bool) {
	// Longest first
	operators := []struct {
		token string
		op    domain.Operator
	}{
		{">=", domain.OpGreaterEqual},
		{"<=", domain.OpLessEqual},
		{"!=", domain.OpNotEqual},
		{"==", domain.OpEqual},
		{"=", domain.OpEqual},
		{"<", domain.OpLess},
		{">", domain.OpGreater},
	}
	for _, candidate := range operators {
		if p.consume(candidate.token) {
			return candidate.op, true
		}
	}
	return domain.OpNone, false
}

func (p *parser) parseCondition() (domain.Condition, error) {
	cond := domain.Condition{Type: domain.CondStandard}

	if p.pos+1 < len(p.input) && p.input[p.pos+1] == ':' {
		condType, ok := conditionFlags[p.input[p.pos]]
		if !ok {
			return domain.Condition{}, p.errorf("unknown condition flag %q", p.input[p.pos])
		}
		cond.Type = condType
		p.pos += 2
	}

	left, err := p.parseOperand()
	if err != nil {
		return domain.Condition{}, err
	}
	cond.Left = left

	op, ok := p.parseOperator()
	if !ok {
		switch cond.Type {
		case domain.CondAddSource, domain.CondSubSource, domain.CondMeasured:
			cond.Operator = domain.OpNone
			cond.Right = domain.Constant(0)
			return cond, nil
		}
		return domain.Condition{}, p.errorf("expected operator")
	}
	cond.Operator = op

	right, err := p.parseOperand()
	if err != nil {
		return domain.Condition{}, err
	}
	cond.Right = right

	switch {
	case p.consume("."):
		target, err := p.parseUint(p.takeWhile(isDigit), 10)
		if err != nil {
			return domain.Condition{}, err
		}
		if !p.consume(".") {
			return domain.Condition{}, p.errorf("unterminated hit target")
		}
		cond.HitTarget = target
		cond.HitMode = domain.HitsCumulative
	case p.consume("("):
		target, err := p.parseUint(p.takeWhile(isDigit), 10)
		if err != nil {
			return domain.Condition{}, err
		}
		if !p.consume(")") {
			return domain.Condition{}, p.errorf("unterminated hit target")
		}
		cond.HitTarget = target
		cond.HitMode = domain.HitsConsecutive
	}

	return cond, nil
}

func (p *parser) parseGroup() (domain.ConditionGroup, error) {
	group := domain.ConditionGroup{}
	if p.done() || p.peek() == 'S' {
		return group, nil
	}

	for {
		cond, err := p.parseCondition()
		if err != nil {
			return domain.ConditionGroup{}, err
		}
		group.Conditions = append(group.Conditions, cond)

		if !p.consume("_") {
			break
		}
	}

	last := group.Conditions[len(group.Conditions)-1]
	if last.Type.IsModifier() {
		return domain.ConditionGroup{}, p.errorf("group ends with a modifier condition")
	}

	return group, nil
}

// ParseTrigger parses a serialized trigger: conditions joined by `_`, groups joined by `S`.
// The first group is the core group, the rest are alt groups. The empty string is an always-true trigger.
func ParseTrigger(input string) (domain.Trigger, error) {
	p := &parser{input: input}

	core, err := p.parseGroup()
	if err != nil {
		return domain.Trigger{}, err
	}

	trigger := domain.Trigger{Core: core}
	for p.consume("S") {
		alt, err := p.parseGroup()
		if err != nil {
			return domain.Trigger{}, err
		}
		trigger.Alts = append(trigger.Alts, alt)
	}

	if !p.done() {
		return domain.Trigger{}, p.errorf("unexpected %q", p.peek())
	}

	return trigger, nil
}
