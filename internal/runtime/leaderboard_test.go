package runtime_test

import (
	"testing"

	"github.com/Amund211/cheevo/internal/domain"
	"github.com/stretchr/testify/require"
)

const (
	lbStart  = 0
	lbCancel = 1
	lbSubmit = 2
	lbValue  = 3
)

const leaderboardMem = "STA:0xH00=1::CAN:0xH01=1::SUB:0xH02=1::VAL:0xH03"

func TestLeaderboardStartThenCancel(t *testing.T) {
	t.Parallel()

	h := newHarness(t).leaderboard(7, leaderboardMem)
	h.quiet(1)

	h.set(lbStart, 1).set(lbValue, 5)
	require.Equal(t, []domain.Change{domain.LeaderboardStarted{ID: 7, Score: 5}}, h.frame())
	require.Equal(t, domain.LeaderboardActive, h.proc.LeaderboardState(7))

	h.set(lbValue, 6)
	require.Equal(t, []domain.Change{domain.LeaderboardUpdated{ID: 7, Score: 6}}, h.frame())
	h.quiet(1)

	h.set(lbCancel, 1)
	require.Equal(t, []domain.Change{domain.LeaderboardCanceled{ID: 7}}, h.frame())
	require.Equal(t, domain.LeaderboardWaiting, h.proc.LeaderboardState(7))

	// Start is still held, which is not a new edge
	h.set(lbCancel, 0)
	h.quiet(3)
}

func TestLeaderboardStartThenSubmit(t *testing.T) {
	t.Parallel()

	h := newHarness(t).leaderboard(7, leaderboardMem)
	h.quiet(1)

	h.set(lbStart, 1).set(lbValue, 5)
	require.Equal(t, []domain.Change{domain.LeaderboardStarted{ID: 7, Score: 5}}, h.frame())

	h.set(lbValue, 8).set(lbSubmit, 1)
	require.Equal(t, []domain.Change{domain.LeaderboardTriggered{ID: 7, Score: 8}}, h.frame())
	require.Equal(t, domain.LeaderboardWaiting, h.proc.LeaderboardState(7))

	value, ok := h.proc.LeaderboardValue(7)
	require.True(t, ok)
	require.Equal(t, int64(8), value)

	h.quiet(2)

	h.set(lbStart, 0).set(lbSubmit, 0)
	h.quiet(1)
	h.set(lbStart, 1)
	require.Equal(t, []domain.Change{domain.LeaderboardStarted{ID: 7, Score: 8}}, h.frame())
}

func TestLeaderboardRequiresStartEdge(t *testing.T) {
	t.Parallel()

	h := newHarness(t).leaderboard(7, leaderboardMem)
	h.set(lbStart, 1)

	h.quiet(3)
	require.Equal(t, domain.LeaderboardWaiting, h.proc.LeaderboardState(7))

	h.set(lbStart, 0)
	h.quiet(1)
	h.set(lbStart, 1)
	require.Len(t, h.frame(), 1)
}

func TestLeaderboardCancelBlocksStart(t *testing.T) {
	t.Parallel()

	h := newHarness(t).leaderboard(7, leaderboardMem)
	h.quiet(1)

	h.set(lbStart, 1).set(lbCancel, 1)
	h.quiet(1)
	require.Equal(t, domain.LeaderboardWaiting, h.proc.LeaderboardState(7))
}

func TestLeaderboardSubmitOnStartFrame(t *testing.T) {
	t.Parallel()

	h := newHarness(t).leaderboard(7, "STA:0xH00=1::CAN:0=1::SUB:0xH00=1::VAL:0xH03")
	h.quiet(1)

	h.set(lbStart, 1).set(lbValue, 3)
	require.Equal(t, []domain.Change{
		domain.LeaderboardStarted{ID: 7, Score: 3},
		domain.LeaderboardTriggered{ID: 7, Score: 3},
	}, h.frame())
	require.Equal(t, domain.LeaderboardWaiting, h.proc.LeaderboardState(7))
}

func TestLeaderboardValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		memory   map[int]byte
		expected int64
	}{
		{"single", "0xH03", map[int]byte{3: 7}, 7},
		{"terms", "0xH03*2_0xH04", map[int]byte{3: 2, 4: 1}, 5},
		{"float multiplier", "0xH03*0.5", map[int]byte{3: 5}, 2},
		{"negative multiplier", "0xH03*-1", map[int]byte{3: 5}, -5},
		{"constant", "100_0xH03", map[int]byte{3: 1}, 101},
		{"largest alternative", "0xH03*2_0xH04$0xH05", map[int]byte{3: 2, 4: 1, 5: 9}, 9},
		{"measured", "A:0xH03_B:0xH04_M:0xH05", map[int]byte{3: 10, 4: 3, 5: 1}, 8},
		{"unavailable memory counts as zero", "0xH03_0xH40", map[int]byte{3: 4}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t).leaderboard(1, "STA:0xH00=1::CAN:0=1::SUB:0=1::VAL:"+tt.value)
			h.quiet(1)

			for address, value := range tt.memory {
				h.set(address, value)
			}
			h.set(lbStart, 1)
			require.Equal(t, []domain.Change{domain.LeaderboardStarted{ID: 1, Score: tt.expected}}, h.frame())
		})
	}
}

func TestMeasuredHitCountValue(t *testing.T) {
	t.Parallel()

	h := newHarness(t).leaderboard(1, "STA:0xH00=1::CAN:0=1::SUB:0=1::VAL:M:0xH03=1")
	h.quiet(1)

	h.set(lbStart, 1)
	require.Equal(t, []domain.Change{domain.LeaderboardStarted{ID: 1, Score: 0}}, h.frame())

	h.set(lbValue, 1)
	require.Equal(t, []domain.Change{domain.LeaderboardUpdated{ID: 1, Score: 1}}, h.frame())
	require.Equal(t, []domain.Change{domain.LeaderboardUpdated{ID: 1, Score: 2}}, h.frame())

	hits, ok := h.proc.LeaderboardHits(1)
	require.True(t, ok)
	require.Equal(t, uint32(2), hits[len(hits)-1])
}
