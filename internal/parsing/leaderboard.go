package parsing

import (
	"fmt"
	"strings"

	"github.com/Amund211/cheevo/internal/domain"
)

// ParseLeaderboard parses the `STA:...::CAN:...::SUB:...::VAL:...` sections of a leaderboard.
// The sections may appear in any order but each must appear exactly once.
func ParseLeaderboard(input string) (domain.LeaderboardConditions, error) {
	var (
		lb   domain.LeaderboardConditions
		seen = map[string]bool{}
	)

	for section := range strings.SplitSeq(input, "::") {
		if len(section) < 4 || section[3] != ':' {
			return domain.LeaderboardConditions{}, fmt.Errorf("%w: malformed leaderboard section %q", domain.ErrInvalidDefinition, section)
		}

		name := strings.ToUpper(section[:3])
		body := section[4:]
		if seen[name] {
			return domain.LeaderboardConditions{}, fmt.Errorf("%w: duplicate leaderboard section %s", domain.ErrInvalidDefinition, name)
		}
		seen[name] = true

		var err error
		switch name {
		case "STA":
			lb.Start, err = ParseTrigger(body)
		case "CAN":
			lb.Cancel, err = ParseTrigger(body)
		case "SUB":
			lb.Submit, err = ParseTrigger(body)
		case "VAL":
			lb.Value, err = ParseValue(body)
		default:
			return domain.LeaderboardConditions{}, fmt.Errorf("%w: unknown leaderboard section %s", domain.ErrInvalidDefinition, name)
		}
		if err != nil {
			return domain.LeaderboardConditions{}, fmt.Errorf("failed to parse %s section: %w", name, err)
		}
	}

	for _, name := range []string{"STA", "CAN", "SUB", "VAL"} {
		if !seen[name] {
			return domain.LeaderboardConditions{}, fmt.Errorf("%w: missing leaderboard section %s", domain.ErrInvalidDefinition, name)
		}
	}

	return lb, nil
}
