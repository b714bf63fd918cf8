package parsing_test

import (
	"testing"

	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/parsing"
	"github.com/stretchr/testify/require"
)

func TestParseTrigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected domain.Trigger
	}{
		{
			name:     "empty",
			input:    "",
			expected: domain.Trigger{},
		},
		{
			name:  "single condition",
			input: "0xH0010=5",
			expected: domain.Trigger{Core: domain.ConditionGroup{Conditions: []domain.Condition{
				{Type: domain.CondStandard, Left: domain.Memory(domain.Size8Bit, 0x10), Operator: domain.OpEqual, Right: domain.Constant(5)},
			}}},
		},
		{
			name:  "sizes, delta and prior",
			input: "0x1234>d0x 1234_0xX10!=p0xX10_0xM01<=h1f_0xK02>=3_0xG8<0xI9",
			expected: domain.Trigger{Core: domain.ConditionGroup{Conditions: []domain.Condition{
				{Left: domain.Memory(domain.Size16Bit, 0x1234), Operator: domain.OpGreater, Right: domain.Delta(domain.Size16Bit, 0x1234)},
				{Left: domain.Memory(domain.Size32Bit, 0x10), Operator: domain.OpNotEqual, Right: domain.Prior(domain.Size32Bit, 0x10)},
				{Left: domain.Memory(domain.SizeBit0, 0x1), Operator: domain.OpLessEqual, Right: domain.Constant(0x1f)},
				{Left: domain.Memory(domain.SizeBitCount, 0x2), Operator: domain.OpGreaterEqual, Right: domain.Constant(3)},
				{Left: domain.Memory(domain.Size32BitBE, 0x8), Operator: domain.OpLess, Right: domain.Memory(domain.Size16BitBE, 0x9)},
			}}},
		},
		{
			name:  "flags and hits",
			input: "R:0xH1=1_P:0xH2=2.3._A:0xH3_C:0xH4=1(2)_0xH5==0",
			expected: domain.Trigger{Core: domain.ConditionGroup{Conditions: []domain.Condition{
				{Type: domain.CondResetIf, Left: domain.Memory(domain.Size8Bit, 1), Operator: domain.OpEqual, Right: domain.Constant(1)},
				{Type: domain.CondPauseIf, Left: domain.Memory(domain.Size8Bit, 2), Operator: domain.OpEqual, Right: domain.Constant(2), HitTarget: 3, HitMode: domain.HitsCumulative},
				{Type: domain.CondAddSource, Left: domain.Memory(domain.Size8Bit, 3), Operator: domain.OpNone, Right: domain.Constant(0)},
				{Type: domain.CondAddHits, Left: domain.Memory(domain.Size8Bit, 4), Operator: domain.OpEqual, Right: domain.Constant(1), HitTarget: 2, HitMode: domain.HitsConsecutive},
				{Type: domain.CondStandard, Left: domain.Memory(domain.Size8Bit, 5), Operator: domain.OpEqual, Right: domain.Constant(0)},
			}}},
		},
		{
			name:  "alt groups and bit6 size",
			input: "0xS10=1S0xH11=2S0xH12=3",
			expected: domain.Trigger{
				Core: domain.ConditionGroup{Conditions: []domain.Condition{
					{Left: domain.Memory(domain.SizeBit6, 0x10), Operator: domain.OpEqual, Right: domain.Constant(1)},
				}},
				Alts: []domain.ConditionGroup{
					{Conditions: []domain.Condition{
						{Left: domain.Memory(domain.Size8Bit, 0x11), Operator: domain.OpEqual, Right: domain.Constant(2)},
					}},
					{Conditions: []domain.Condition{
						{Left: domain.Memory(domain.Size8Bit, 0x12), Operator: domain.OpEqual, Right: domain.Constant(3)},
					}},
				},
			},
		},
		{
			name:  "empty core with alts",
			input: "S0xH11=2",
			expected: domain.Trigger{
				Alts: []domain.ConditionGroup{
					{Conditions: []domain.Condition{
						{Left: domain.Memory(domain.Size8Bit, 0x11), Operator: domain.OpEqual, Right: domain.Constant(2)},
					}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			trigger, err := parsing.ParseTrigger(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.expected, trigger)
		})
	}
}

func TestParseTriggerErrors(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"0xH10",
		"0xH10=",
		"0xZ10=1",
		"0x=1",
		"Z:0xH10=1",
		"0xH10=1.3",
		"0xH10=1(3",
		"0xH10=1_",
		"0xH10=1_A:0xH11",
		"0xH10=1 trailing",
		"d5=1",
		"0xH10=99999999999",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			_, err := parsing.ParseTrigger(input)
			require.ErrorIs(t, err, domain.ErrInvalidDefinition)
		})
	}
}

func TestSerializeTriggerRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"0xH10=5",
		"R:0xH1=1_P:0xH2=2.3._A:0xH3_C:0xH4=1(2)_0xH5=0",
		"0xS10=1S0xH11=2S0xH12=3",
		"0x1234>d0x 1234_0xX10!=p0xX10_0xM01<=31",
		"",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			trigger, err := parsing.ParseTrigger(input)
			require.NoError(t, err)

			reparsed, err := parsing.ParseTrigger(parsing.SerializeTrigger(trigger))
			require.NoError(t, err)
			require.Equal(t, trigger, reparsed)
		})
	}

	trigger, err := parsing.ParseTrigger("0xH10=5.2.")
	require.NoError(t, err)
	require.Equal(t, "0xH0010=5.2.", parsing.SerializeTrigger(trigger))
}
