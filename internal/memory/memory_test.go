package memory_test

import (
	"testing"

	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/memory"
	"github.com/stretchr/testify/require"
)

func newMemory(t *testing.T, banks ...[]byte) *memory.Memory {
	t.Helper()

	mem := memory.New()
	for i, buf := range banks {
		read, write := memory.SliceBank(buf)
		mem.Install(uint8(i), uint32(len(buf)), read, write)
	}
	return mem
}

func TestRead(t *testing.T) {
	t.Parallel()

	mem := newMemory(t, []byte{1, 2, 3, 4}, []byte{5, 6})

	t.Run("within a bank", func(t *testing.T) {
		t.Parallel()
		data, ok := mem.Read(0, 1, 2)
		require.True(t, ok)
		require.Equal(t, []byte{2, 3}, data)

		data, ok = mem.Read(1, 0, 2)
		require.True(t, ok)
		require.Equal(t, []byte{5, 6}, data)
	})

	t.Run("past the end of the bank", func(t *testing.T) {
		t.Parallel()
		_, ok := mem.Read(1, 1, 2)
		require.False(t, ok)
	})

	t.Run("missing bank", func(t *testing.T) {
		t.Parallel()
		_, ok := mem.Read(7, 0, 1)
		require.False(t, ok)
	})
}

func TestWrite(t *testing.T) {
	t.Parallel()

	buf := []byte{0, 0, 0}
	mem := newMemory(t, buf)

	require.True(t, mem.Write(0, 1, []byte{9, 8}))
	require.Equal(t, []byte{0, 9, 8}, buf)

	require.False(t, mem.Write(0, 2, []byte{1, 1}))
	require.False(t, mem.Write(3, 0, []byte{1}))

	read, _ := memory.SliceBank([]byte{1})
	mem.Install(4, 1, read, nil)
	require.False(t, mem.Write(4, 0, []byte{1}), "read-only bank")
}

func TestPeekSpansBanksInIDOrder(t *testing.T) {
	t.Parallel()

	mem := memory.New()
	high, _ := memory.SliceBank([]byte{0xaa, 0xbb})
	low, _ := memory.SliceBank([]byte{0x11, 0x22})
	mem.Install(2, 2, high, nil)
	mem.Install(0, 2, low, nil)

	require.Equal(t, uint32(4), mem.TotalSize())

	value, ok := mem.Peek(0, domain.Size8Bit)
	require.True(t, ok)
	require.Equal(t, uint32(0x11), value)

	value, ok = mem.Peek(2, domain.Size8Bit)
	require.True(t, ok)
	require.Equal(t, uint32(0xaa), value)

	value, ok = mem.Peek(1, domain.Size16Bit)
	require.True(t, ok)
	require.Equal(t, uint32(0xaa22), value)

	_, ok = mem.Peek(3, domain.Size16Bit)
	require.False(t, ok)

	_, ok = mem.Peek(4, domain.Size8Bit)
	require.False(t, ok)
}

func TestRemoveAndClear(t *testing.T) {
	t.Parallel()

	mem := newMemory(t, []byte{1}, []byte{2}, []byte{3})

	mem.Remove(1)
	_, ok := mem.Peek(1, domain.Size8Bit)
	require.False(t, ok)
	_, ok = mem.Read(1, 0, 1)
	require.False(t, ok)
	require.False(t, mem.Write(1, 0, []byte{9}))

	// Banks around the removed one keep their addresses
	value, ok := mem.Peek(0, domain.Size8Bit)
	require.True(t, ok)
	require.Equal(t, uint32(1), value)
	value, ok = mem.Peek(2, domain.Size8Bit)
	require.True(t, ok)
	require.Equal(t, uint32(3), value)
	_, ok = mem.Peek(0, domain.Size16Bit)
	require.False(t, ok)
	require.Equal(t, uint32(3), mem.TotalSize())

	read, write := memory.SliceBank([]byte{5})
	mem.Install(1, 1, read, write)
	value, ok = mem.Peek(1, domain.Size8Bit)
	require.True(t, ok)
	require.Equal(t, uint32(5), value)

	mem.Clear()
	_, ok = mem.Peek(0, domain.Size8Bit)
	require.False(t, ok)
	require.Equal(t, uint32(0), mem.TotalSize())
}

func TestInstallReplacesBank(t *testing.T) {
	t.Parallel()

	mem := newMemory(t, []byte{1, 2})
	read, _ := memory.SliceBank([]byte{7})
	mem.Install(0, 1, read, nil)

	require.Equal(t, uint32(1), mem.TotalSize())
	value, ok := mem.Peek(0, domain.Size8Bit)
	require.True(t, ok)
	require.Equal(t, uint32(7), value)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	data := []byte{0b1010_0110, 0x34, 0x56, 0x78}

	tests := []struct {
		name     string
		size     domain.MemSize
		expected uint32
	}{
		{"bit0", domain.SizeBit0, 0},
		{"bit1", domain.SizeBit1, 1},
		{"bit2", domain.SizeBit2, 1},
		{"bit5", domain.SizeBit5, 1},
		{"bit7", domain.SizeBit7, 1},
		{"bit6", domain.SizeBit6, 0},
		{"lower4", domain.SizeLower4, 0x6},
		{"upper4", domain.SizeUpper4, 0xa},
		{"8bit", domain.Size8Bit, 0xa6},
		{"16bit", domain.Size16Bit, 0x34a6},
		{"24bit", domain.Size24Bit, 0x5634a6},
		{"32bit", domain.Size32Bit, 0x785634a6},
		{"16bit be", domain.Size16BitBE, 0xa634},
		{"24bit be", domain.Size24BitBE, 0xa63456},
		{"32bit be", domain.Size32BitBE, 0xa6345678},
		{"bitcount", domain.SizeBitCount, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, memory.Decode(tt.size, data[:tt.size.Bytes()]))
		})
	}

	require.Equal(t, uint32(0), memory.Decode(domain.Size32Bit, []byte{1}), "short input")
}
