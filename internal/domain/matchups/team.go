package matchups

import "fmt"

// Team is one of the three sides of a matchup.
type Team int

const (
	TeamUnknown Team = -1
	TeamRed     Team = 0
	TeamBlue    Team = 1
	TeamGreen   Team = 2
)

// Teams lists the sides in score order.
var Teams = [3]Team{TeamRed, TeamBlue, TeamGreen}

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "Red"
	case TeamBlue:
		return "Blue"
	case TeamGreen:
		return "Green"
	default:
		return "Unknown"
	}
}

// MarshalText renders the team name so JSON payloads stay readable.
func (t Team) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (t *Team) UnmarshalText(b []byte) error {
	parsed, err := ParseTeam(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTeam maps an upstream owner string to a Team. Neutral owners map to TeamUnknown.
func ParseTeam(raw string) (Team, error) {
	switch raw {
	case "Red":
		return TeamRed, nil
	case "Blue":
		return TeamBlue, nil
	case "Green":
		return TeamGreen, nil
	case "Neutral", "Unknown", "":
		return TeamUnknown, nil
	default:
		return TeamUnknown, fmt.Errorf("unknown team %q", raw)
	}
}

// Score holds one value per team, indexed by Team.
type Score [3]int

// ScoreFromSlice validates an upstream score list.
func ScoreFromSlice(values []int) (Score, error) {
	var s Score
	if len(values) != len(s) {
		return s, fmt.Errorf("score must have %d entries, got %d", len(s), len(values))
	}
	copy(s[:], values)
	return s, nil
}

// Get returns the score of team t. Unknown teams have no score.
func (s Score) Get(t Team) int {
	if t < TeamRed || t > TeamGreen {
		return 0
	}
	return s[t]
}

// Equal reports whether all three team components match.
func (s Score) Equal(other Score) bool {
	return s == other
}
