package parsing

import (
	"strconv"
	"strings"

	"github.com/Amund211/cheevo/internal/domain"
)

func isMultiplierChar(c byte) bool {
	return isDigit(c) || c == '.' || c == '-'
}

func (p *parser) parseTerm() (domain.ValueTerm, error) {
	operand, err := p.parseOperand()
	if err != nil {
		return domain.ValueTerm{}, err
	}

	term := domain.ValueTerm{Operand: operand, Multiplier: 1}
	if p.consume("*") {
		digits := p.takeWhile(isMultiplierChar)
		multiplier, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return domain.ValueTerm{}, p.errorf("invalid multiplier %q", digits)
		}
		term.Multiplier = multiplier
	}

	return term, nil
}

func parseAlternative(input string) (domain.ValueAlternative, error) {
	p := &parser{input: input}

	if strings.Contains(input, "M:") {
		group, err := p.parseGroup()
		if err != nil {
			return domain.ValueAlternative{}, err
		}
		if !p.done() {
			return domain.ValueAlternative{}, p.errorf("unexpected %q", p.peek())
		}
		measured := 0
		for _, cond := range group.Conditions {
			if cond.Type == domain.CondMeasured {
				measured++
			}
		}
		if measured != 1 {
			return domain.ValueAlternative{}, p.errorf("expected exactly one measured condition, got %d", measured)
		}
		return domain.ValueAlternative{Measured: &group}, nil
	}

	alternative := domain.ValueAlternative{}
	for {
		term, err := p.parseTerm()
		if err != nil {
			return domain.ValueAlternative{}, err
		}
		alternative.Terms = append(alternative.Terms, term)

		if !p.consume("_") {
			break
		}
	}
	if !p.done() {
		return domain.ValueAlternative{}, p.errorf("unexpected %q", p.peek())
	}

	return alternative, nil
}

// ParseValue parses a value expression.
// Alternatives are joined by `$` and the largest one is used. Each alternative is either
// `_` joined `operand*multiplier` terms or a condition group with a single `M:` condition.
func ParseValue(input string) (domain.Value, error) {
	if input == "" {
		return domain.Value{}, (&parser{input: input}).errorf("empty value")
	}

	value := domain.Value{}
	for part := range strings.SplitSeq(input, "$") {
		alternative, err := parseAlternative(part)
		if err != nil {
			return domain.Value{}, err
		}
		value.Alternatives = append(value.Alternatives, alternative)
	}
	return value, nil
}
