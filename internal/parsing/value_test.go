package parsing_test

import (
	"testing"

	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/parsing"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	t.Parallel()

	t.Run("terms", func(t *testing.T) {
		t.Parallel()

		value, err := parsing.ParseValue("0xH10*10_0xH11*0.5_d0xH12*-1_100")
		require.NoError(t, err)
		require.Equal(t, domain.Value{Alternatives: []domain.ValueAlternative{{
			Terms: []domain.ValueTerm{
				{Operand: domain.Memory(domain.Size8Bit, 0x10), Multiplier: 10},
				{Operand: domain.Memory(domain.Size8Bit, 0x11), Multiplier: 0.5},
				{Operand: domain.Delta(domain.Size8Bit, 0x12), Multiplier: -1},
				{Operand: domain.Constant(100), Multiplier: 1},
			},
		}}}, value)
	})

	t.Run("alternatives", func(t *testing.T) {
		t.Parallel()

		value, err := parsing.ParseValue("0xH10$0xH11*2")
		require.NoError(t, err)
		require.Len(t, value.Alternatives, 2)
		require.Equal(t, 2.0, value.Alternatives[1].Terms[0].Multiplier)
	})

	t.Run("measured", func(t *testing.T) {
		t.Parallel()

		value, err := parsing.ParseValue("A:0xH10_B:0xH11_M:0xH12")
		require.NoError(t, err)
		require.Len(t, value.Alternatives, 1)
		measured := value.Alternatives[0].Measured
		require.NotNil(t, measured)
		require.Len(t, measured.Conditions, 3)
		require.Equal(t, domain.CondAddSource, measured.Conditions[0].Type)
		require.Equal(t, domain.CondSubSource, measured.Conditions[1].Type)
		require.Equal(t, domain.CondMeasured, measured.Conditions[2].Type)
		require.Equal(t, domain.OpNone, measured.Conditions[2].Operator)
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		for _, input := range []string{
			"",
			"0xH10*",
			"0xH10*x",
			"0xH10$",
			"A:0xH10_0xH11=1_M:0xH12_M:0xH13",
			"0xH10 0xH11",
		} {
			_, err := parsing.ParseValue(input)
			require.ErrorIs(t, err, domain.ErrInvalidDefinition, input)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		for _, input := range []string{
			"0xH10*10_0xH11*0.5_d0xH12*-1_100",
			"0xH10$0xH11*2",
			"A:0xH10_B:0xH11_M:0xH12",
		} {
			value, err := parsing.ParseValue(input)
			require.NoError(t, err)
			reparsed, err := parsing.ParseValue(parsing.SerializeValue(value))
			require.NoError(t, err)
			require.Equal(t, value, reparsed)
		}
	})
}

func TestParseLeaderboard(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		lb, err := parsing.ParseLeaderboard("STA:0xH10=1::CAN:0xH11=1::SUB:0xH12=1::VAL:0xH13")
		require.NoError(t, err)
		require.Len(t, lb.Start.Core.Conditions, 1)
		require.Equal(t, uint32(0x10), lb.Start.Core.Conditions[0].Left.Address)
		require.Equal(t, uint32(0x11), lb.Cancel.Core.Conditions[0].Left.Address)
		require.Equal(t, uint32(0x12), lb.Submit.Core.Conditions[0].Left.Address)
		require.Equal(t, uint32(0x13), lb.Value.Alternatives[0].Terms[0].Operand.Address)

		reparsed, err := parsing.ParseLeaderboard(parsing.SerializeLeaderboard(lb))
		require.NoError(t, err)
		require.Equal(t, lb, reparsed)
	})

	t.Run("sections in any order", func(t *testing.T) {
		t.Parallel()

		lb, err := parsing.ParseLeaderboard("val:0xH13::sub:0xH12=1::sta:0xH10=1::can:0=1")
		require.NoError(t, err)
		require.Equal(t, domain.Constant(0), lb.Cancel.Core.Conditions[0].Left)
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		for _, input := range []string{
			"",
			"STA:0xH10=1::CAN:0xH11=1::SUB:0xH12=1",
			"STA:0xH10=1::STA:0xH10=1::CAN:0xH11=1::SUB:0xH12=1::VAL:0xH13",
			"STA:0xH10=1::CAN:0xH11=1::SUB:0xH12=1::VAL:0xH13::FOO:1",
			"STA:0xH10::CAN:0xH11=1::SUB:0xH12=1::VAL:0xH13",
			"STA0xH10=1",
		} {
			_, err := parsing.ParseLeaderboard(input)
			require.ErrorIs(t, err, domain.ErrInvalidDefinition, input)
		}
	})
}
