package domain

import "fmt"

type MemSize int

const (
	SizeBit0 MemSize = iota
	SizeBit1
	SizeBit2
	SizeBit3
	SizeBit4
	SizeBit5
	SizeBit6
	SizeBit7
	SizeLower4
	SizeUpper4
	Size8Bit
	Size16Bit
	Size24Bit
	Size32Bit
	Size16BitBE
	Size24BitBE
	Size32BitBE
	SizeBitCount
)

// Bytes returns the number of bytes that must be read from memory for a value of this size
func (s MemSize) Bytes() uint32 {
	switch s {
	case Size16Bit, Size16BitBE:
		return 2
	case Size24Bit, Size24BitBE:
		return 3
	case Size32Bit, Size32BitBE:
		return 4
	default:
		return 1
	}
}

type OperandKind int

const (
	OperandConstant OperandKind = iota
	OperandMemory
	OperandDelta
	OperandPrior
)

type Operand struct {
	Kind    OperandKind
	Size    MemSize
	Address uint32
	// Value is only used by constant operands
	Value uint32
}

func (o Operand) IsMemory() bool {
	return o.Kind != OperandConstant
}

func Constant(value uint32) Operand {
	return Operand{Kind: OperandConstant, Value: value}
}

func Memory(size MemSize, address uint32) Operand {
	return Operand{Kind: OperandMemory, Size: size, Address: address}
}

func Delta(size MemSize, address uint32) Operand {
	return Operand{Kind: OperandDelta, Size: size, Address: address}
}

func Prior(size MemSize, address uint32) Operand {
	return Operand{Kind: OperandPrior, Size: size, Address: address}
}

type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	// OpNone marks a condition with only a left operand (AddSource, SubSource, Measured)
	OpNone
)

func (op Operator) Compare(left, right int64) bool {
	switch op {
	case OpEqual:
		return left == right
	case OpNotEqual:
		return left != right
	case OpLess:
		return left < right
	case OpLessEqual:
		return left <= right
	case OpGreater:
		return left > right
	case OpGreaterEqual:
		return left >= right
	case OpNone:
		return true
	}
	panic(fmt.Sprintf("logic error: unknown operator %d", op))
}

func (op Operator) String() string {
	switch op {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEqual:
		return ">="
	}
	return ""
}

type ConditionType int

const (
	CondStandard ConditionType = iota
	CondResetIf
	CondPauseIf
	CondAddSource
	CondSubSource
	CondAddHits
	CondAndNext
	CondOrNext
	CondMeasured
)

// IsModifier reports whether the condition only feeds into the next condition in its group
func (t ConditionType) IsModifier() bool {
	switch t {
	case CondAddSource, CondSubSource, CondAddHits, CondAndNext, CondOrNext:
		return true
	}
	return false
}

type HitMode int

const (
	// HitsCumulative counts every frame the comparison held since the last reset
	HitsCumulative HitMode = iota
	// HitsConsecutive clears the count on the first frame the comparison does not hold
	HitsConsecutive
)

// Condition is the immutable template of a single comparison.
// Runtime state (hit counts, previous memory values) lives in the runtime package.
type Condition struct {
	Type      ConditionType
	Left      Operand
	Operator  Operator
	Right     Operand
	HitTarget uint32
	HitMode   HitMode
}

type ConditionGroup struct {
	Conditions []Condition
}

// Trigger is a core group plus optional alt groups.
// It is true when the core group is true and, if there are alts, at least one alt is true.
type Trigger struct {
	Core ConditionGroup
	Alts []ConditionGroup
}

// Groups returns the core group followed by the alt groups
func (t Trigger) Groups() []ConditionGroup {
	groups := make([]ConditionGroup, 0, 1+len(t.Alts))
	groups = append(groups, t.Core)
	groups = append(groups, t.Alts...)
	return groups
}

func (t Trigger) ConditionCount() int {
	count := 0
	for _, group := range t.Groups() {
		count += len(group.Conditions)
	}
	return count
}

// ValueTerm is one `operand*multiplier` part of a legacy value expression
type ValueTerm struct {
	Operand    Operand
	Multiplier float64
}

// ValueAlternative is either a sum of terms or a measured condition group
type ValueAlternative struct {
	Terms    []ValueTerm
	Measured *ConditionGroup
}

// Value computes a number from memory. With several alternatives the largest one wins.
type Value struct {
	Alternatives []ValueAlternative
}
