package memory

import (
	"math/bits"
	"slices"
	"sync"

	"github.com/Amund211/cheevo/internal/domain"
)

// ReadFunc reads a single byte at offset within a bank
type ReadFunc func(offset uint32) byte

// WriteFunc writes a single byte at offset within a bank
type WriteFunc func(offset uint32, value byte)

type bank struct {
	id   uint8
	size uint32
	// false once removed, the bank keeps its slot in the flat address space
	present bool
	read    ReadFunc
	write   WriteFunc
}

// Memory is the set of memory banks installed by the host.
// The flat address space used by Peek places the banks back to back in ascending id order.
// Removing a bank leaves a hole, addresses of the other banks do not move.
type Memory struct {
	mu    sync.RWMutex
	banks []bank
}

func New() *Memory {
	return &Memory{}
}

// Install adds or replaces the bank with the given id.
// write may be nil for read-only banks.
func (m *Memory) Install(id uint8, size uint32, read ReadFunc, write WriteFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.banks = slices.DeleteFunc(m.banks, func(b bank) bool { return b.id == id })
	m.banks = append(m.banks, bank{id: id, size: size, present: true, read: read, write: write})
	slices.SortFunc(m.banks, func(a, b bank) int { return int(a.id) - int(b.id) })
}

// Remove uninstalls a single bank, e.g. when a peripheral is unplugged.
// Its address range reads as missing until the bank is installed again or memory is cleared.
func (m *Memory) Remove(id uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.banks {
		if m.banks[i].id == id {
			m.banks[i].present = false
			m.banks[i].read = nil
			m.banks[i].write = nil
		}
	}
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.banks = nil
}

// TotalSize is the size of the flat address space, holes of removed banks included
func (m *Memory) TotalSize() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total uint32
	for _, b := range m.banks {
		total += b.size
	}
	return total
}

func (m *Memory) findBank(id uint8) (bank, bool) {
	for _, b := range m.banks {
		if b.id == id && b.present {
			return b, true
		}
	}
	return bank{}, false
}

// Read copies length bytes starting at offset in the given bank.
// Returns false if the bank is not installed or the range is outside it.
func (m *Memory) Read(bankID uint8, offset, length uint32) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.findBank(bankID)
	if !ok {
		return nil, false
	}
	if uint64(offset)+uint64(length) > uint64(b.size) {
		return nil, false
	}

	data := make([]byte, length)
	for i := range length {
		data[i] = b.read(offset + i)
	}
	return data, true
}

// Write stores data at offset in the given bank.
// Returns false if the bank is missing, read-only or too small.
func (m *Memory) Write(bankID uint8, offset uint32, data []byte) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.findBank(bankID)
	if !ok || b.write == nil {
		return false
	}
	if uint64(offset)+uint64(len(data)) > uint64(b.size) {
		return false
	}

	for i, value := range data {
		b.write(offset+uint32(i), value)
	}
	return true
}

// readFlat must be called with the read lock held
func (m *Memory) readFlat(address uint32) (byte, bool) {
	for _, b := range m.banks {
		if address < b.size {
			if !b.present {
				return 0, false
			}
			return b.read(address), true
		}
		address -= b.size
	}
	return 0, false
}

// Peek reads a value of the given size from the flat address space.
// Returns false if any of the bytes fall outside the installed banks.
func (m *Memory) Peek(address uint32, size domain.MemSize) (uint32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var buf [4]byte
	n := size.Bytes()
	for i := range n {
		value, ok := m.readFlat(address + i)
		if !ok {
			return 0, false
		}
		buf[i] = value
	}

	return Decode(size, buf[:n]), true
}

// Decode interprets raw little endian memory bytes as a value of the given size
func Decode(size domain.MemSize, data []byte) uint32 {
	if len(data) < int(size.Bytes()) {
		return 0
	}

	switch size {
	case domain.SizeBit0, domain.SizeBit1, domain.SizeBit2, domain.SizeBit3,
		domain.SizeBit4, domain.SizeBit5, domain.SizeBit6, domain.SizeBit7:
		return uint32(data[0]>>(size-domain.SizeBit0)) & 1
	case domain.SizeLower4:
		return uint32(data[0] & 0x0f)
	case domain.SizeUpper4:
		return uint32(data[0] >> 4)
	case domain.Size8Bit:
		return uint32(data[0])
	case domain.Size16Bit:
		return uint32(data[0]) | uint32(data[1])<<8
	case domain.Size24Bit:
		return uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16
	case domain.Size32Bit:
		return uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	case domain.Size16BitBE:
		return uint32(data[0])<<8 | uint32(data[1])
	case domain.Size24BitBE:
		return uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])
	case domain.Size32BitBE:
		return uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
	case domain.SizeBitCount:
		return uint32(bits.OnesCount8(data[0]))
	}
	return 0
}

// SliceBank returns read and write functions backed by buf, for hosts that keep their memory in a byte slice
func SliceBank(buf []byte) (ReadFunc, WriteFunc) {
	read := func(offset uint32) byte {
		return buf[offset]
	}
	write := func(offset uint32, value byte) {
		buf[offset] = value
	}
	return read, write
}
