package parsing_test

import (
	"testing"

	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/parsing"
	"github.com/stretchr/testify/require"
)

const script = `// Rich presence for the test game
Format:Score
FormatType=SCORE

Lookup:Mode
0=Easy
1,2=Normal
0x03-4=Hard
*=Unknown

Display:
?0xH10=1?Playing @Mode(0xH11) with @Score(0xH12_0xH13*10) points
?0xH10=2?In the menu
Exploring
Ignored after the default
`

func TestParseRichPresence(t *testing.T) {
	t.Parallel()

	rp, err := parsing.ParseRichPresence(script)
	require.NoError(t, err)

	require.Equal(t, map[string]domain.ValueFormat{"Score": domain.FormatScore}, rp.Formats)

	require.Equal(t, domain.RichPresenceLookup{
		Entries: map[uint32]string{
			0: "Easy",
			1: "Normal",
			2: "Normal",
			3: "Hard",
			4: "Hard",
		},
		Fallback:    "Unknown",
		HasFallback: true,
	}, rp.Lookups["Mode"])

	require.Len(t, rp.Displays, 3)

	first := rp.Displays[0]
	require.NotNil(t, first.Condition)
	require.Len(t, first.Parts, 5)
	require.Equal(t, "Playing ", first.Parts[0].Literal)
	require.Equal(t, "Mode", first.Parts[1].Macro)
	require.Equal(t, " with ", first.Parts[2].Literal)
	require.Equal(t, "Score", first.Parts[3].Macro)
	require.Len(t, first.Parts[3].Value.Alternatives[0].Terms, 2)
	require.Equal(t, " points", first.Parts[4].Literal)

	require.Equal(t, []domain.RichPresencePart{{Literal: "In the menu"}}, rp.Displays[1].Parts)

	require.Nil(t, rp.Displays[2].Condition)
	require.Equal(t, []domain.RichPresencePart{{Literal: "Exploring"}}, rp.Displays[2].Parts)
}

func TestParseRichPresenceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script string
	}{
		{"empty", ""},
		{"no default", "Display:\n?0xH10=1?Conditional only\n"},
		{"text outside a section", "hello\n"},
		{"bad lookup line", "Lookup:A\nnot an entry\n\nDisplay:\nx\n"},
		{"bad lookup key", "Lookup:A\nz=1\n\nDisplay:\nx\n"},
		{"bad format line", "Format:A\nType=VALUE\n\nDisplay:\nx\n"},
		{"bad condition", "Display:\n?0xH10?x\ndefault\n"},
		{"unterminated condition", "Display:\n?0xH10=1 x\ndefault\n"},
		{"bad macro value", "Display:\n@Score(0xZ1)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := parsing.ParseRichPresence(tt.script)
			require.ErrorIs(t, err, domain.ErrInvalidDefinition)
		})
	}
}
