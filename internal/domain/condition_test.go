package domain_test

import (
	"fmt"
	"testing"

	"github.com/Amund211/cheevo/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestOperatorCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		op       domain.Operator
		left     int64
		right    int64
		expected bool
	}{
		{domain.OpEqual, 5, 5, true},
		{domain.OpEqual, 5, 4, false},
		{domain.OpNotEqual, 5, 4, true},
		{domain.OpNotEqual, 5, 5, false},
		{domain.OpLess, 4, 5, true},
		{domain.OpLess, 5, 5, false},
		{domain.OpLessEqual, 5, 5, true},
		{domain.OpLessEqual, 6, 5, false},
		{domain.OpGreater, 6, 5, true},
		{domain.OpGreater, 5, 5, false},
		{domain.OpGreaterEqual, 5, 5, true},
		{domain.OpGreaterEqual, 4, 5, false},
		{domain.OpNone, 0, 100, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d %s %d", tt.left, tt.op, tt.right), func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, tt.op.Compare(tt.left, tt.right))
		})
	}

	require.Panics(t, func() {
		domain.Operator(100).Compare(1, 1)
	})
}

func TestMemSizeBytes(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint32(1), domain.SizeBit3.Bytes())
	require.Equal(t, uint32(1), domain.SizeUpper4.Bytes())
	require.Equal(t, uint32(1), domain.Size8Bit.Bytes())
	require.Equal(t, uint32(1), domain.SizeBitCount.Bytes())
	require.Equal(t, uint32(2), domain.Size16Bit.Bytes())
	require.Equal(t, uint32(2), domain.Size16BitBE.Bytes())
	require.Equal(t, uint32(3), domain.Size24Bit.Bytes())
	require.Equal(t, uint32(3), domain.Size24BitBE.Bytes())
	require.Equal(t, uint32(4), domain.Size32Bit.Bytes())
	require.Equal(t, uint32(4), domain.Size32BitBE.Bytes())
}

func TestConditionTypeIsModifier(t *testing.T) {
	t.Parallel()

	modifiers := []domain.ConditionType{
		domain.CondAddSource, domain.CondSubSource, domain.CondAddHits, domain.CondAndNext, domain.CondOrNext,
	}
	for _, condType := range modifiers {
		require.True(t, condType.IsModifier())
	}

	terminals := []domain.ConditionType{
		domain.CondStandard, domain.CondResetIf, domain.CondPauseIf, domain.CondMeasured,
	}
	for _, condType := range terminals {
		require.False(t, condType.IsModifier())
	}
}

func TestTriggerGroups(t *testing.T) {
	t.Parallel()

	cond := domain.Condition{
		Left:     domain.Memory(domain.Size8Bit, 0x10),
		Operator: domain.OpEqual,
		Right:    domain.Constant(5),
	}

	trigger := domain.Trigger{
		Core: domain.ConditionGroup{Conditions: []domain.Condition{cond, cond}},
		Alts: []domain.ConditionGroup{
			{Conditions: []domain.Condition{cond}},
			{Conditions: []domain.Condition{cond, cond, cond}},
		},
	}

	groups := trigger.Groups()
	require.Len(t, groups, 3)
	require.Len(t, groups[0].Conditions, 2)
	require.Len(t, groups[2].Conditions, 3)
	require.Equal(t, 6, trigger.ConditionCount())

	require.Equal(t, 0, domain.Trigger{}.ConditionCount())
	require.Len(t, domain.Trigger{}.Groups(), 1)
}

func TestFormatChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		change   domain.Change
		expected string
	}{
		{domain.AchievementReset{ID: 1}, "{AchievementReset, 1, 0}"},
		{domain.AchievementTriggered{ID: 2}, "{AchievementTriggered, 2, 0}"},
		{domain.LeaderboardStarted{ID: 3, Score: 10}, "{LeaderboardStarted, 3, 10}"},
		{domain.LeaderboardUpdated{ID: 3, Score: 11}, "{LeaderboardUpdated, 3, 11}"},
		{domain.LeaderboardCanceled{ID: 3}, "{LeaderboardCanceled, 3, 0}"},
		{domain.LeaderboardTriggered{ID: 3, Score: -4}, "{LeaderboardTriggered, 3, -4}"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, domain.FormatChange(tt.change))
		})
	}
}
