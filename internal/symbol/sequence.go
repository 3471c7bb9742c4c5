package symbol

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Direction selects which way Advance moves through the attribute list.
type Direction int

const (
	// Forward moves to the next attribute, wrapping to the first.
	Forward Direction = iota
	// Reverse moves to the previous attribute, wrapping to the last.
	Reverse
)

// String returns the direction's canonical name.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// ParseDirection maps a control name to a Direction. Button ids used by
// slider UIs ("skip", "next", "back", "previous") are accepted as aliases.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "skip", "next":
		return Forward, nil
	case "reverse", "back", "previous", "prev":
		return Reverse, nil
	default:
		return 0, eris.Errorf("symbol: unknown direction %q", s)
	}
}

// Advance moves index one step in dir over a list of count attributes,
// wrapping at both ends. index must be in [0, count-1].
func Advance(index int, dir Direction, count int) int {
	if dir == Reverse {
		index--
		if index < 0 {
			return count - 1
		}
		return index
	}
	index++
	if index >= count {
		return 0
	}
	return index
}
