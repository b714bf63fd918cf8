package runtime

import "github.com/Amund211/cheevo/internal/domain"

// Peeker reads values from the flat emulated address space
type Peeker interface {
	Peek(address uint32, size domain.MemSize) (uint32, bool)
}

// memValue tracks a memory reference across frames
type memValue struct {
	current  uint32
	previous uint32
	prior    uint32
	valid    bool
}

func (m *memValue) refresh(mem Peeker, operand domain.Operand) {
	if !operand.IsMemory() {
		return
	}

	value, ok := mem.Peek(operand.Address, operand.Size)
	if !ok {
		m.valid = false
		return
	}

	m.previous = m.current
	if value != m.current {
		m.prior = m.current
	}
	m.current = value
	m.valid = true
}

// value resolves the operand against the tracked memory.
// Returns false if the operand reads memory that is not available.
func (m *memValue) value(operand domain.Operand) (int64, bool) {
	switch operand.Kind {
	case domain.OperandConstant:
		return int64(operand.Value), true
	case domain.OperandMemory:
		return int64(m.current), m.valid
	case domain.OperandDelta:
		return int64(m.previous), m.valid
	case domain.OperandPrior:
		return int64(m.prior), m.valid
	}
	return 0, false
}
