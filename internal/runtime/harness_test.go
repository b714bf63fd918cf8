package runtime_test

import (
	"testing"

	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/memory"
	"github.com/Amund211/cheevo/internal/runtime"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t    *testing.T
	buf  []byte
	mem  *memory.Memory
	proc *runtime.Processor
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	buf := make([]byte, 0x20)
	mem := memory.New()
	read, write := memory.SliceBank(buf)
	mem.Install(0, uint32(len(buf)), read, write)

	return &harness{t: t, buf: buf, mem: mem, proc: runtime.New(mem)}
}

// reinstall puts the bank back after it has been removed
func (h *harness) reinstall() {
	read, write := memory.SliceBank(h.buf)
	h.mem.Install(0, uint32(len(h.buf)), read, write)
}

func (h *harness) set(address int, value byte) *harness {
	h.buf[address] = value
	return h
}

func (h *harness) frame() []domain.Change {
	return h.proc.Process(h.t.Context())
}

// quiet runs n frames and requires that none of them produce changes
func (h *harness) quiet(n int) {
	h.t.Helper()
	for range n {
		require.Empty(h.t, h.frame())
	}
}

func (h *harness) achievement(id uint32, memAddr string) *harness {
	h.t.Helper()
	require.NoError(h.t, h.proc.ActivateAchievement(domain.AchievementDefinition{ID: id, MemAddr: memAddr}))
	return h
}

func (h *harness) leaderboard(id uint32, mem string) *harness {
	h.t.Helper()
	require.NoError(h.t, h.proc.ActivateLeaderboard(domain.LeaderboardDefinition{ID: id, Mem: mem}))
	return h
}

func (h *harness) hits(id uint32) []uint32 {
	h.t.Helper()
	hits, ok := h.proc.AchievementHits(id)
	require.True(h.t, ok)
	return hits
}
