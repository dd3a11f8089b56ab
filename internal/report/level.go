package report

import "fmt"

// Level controls how much the reporters print.
type Level int

const (
	// LevelQuiet prints nothing.
	LevelQuiet Level = iota
	// LevelErrors prints errors and unsuccessful files.
	LevelErrors
	// LevelWarnings adds warnings. It is the default.
	LevelWarnings
	// LevelAll adds successful files.
	LevelAll
)

// ParseLevel accepts the one-letter names q, e, w and a. Empty means
// LevelWarnings.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "q":
		return LevelQuiet, nil
	case "e":
		return LevelErrors, nil
	case "w", "":
		return LevelWarnings, nil
	case "a":
		return LevelAll, nil
	}
	return LevelWarnings, fmt.Errorf("invalid log level %q (want q, e, w or a)", s)
}

func (l Level) String() string {
	switch l {
	case LevelQuiet:
		return "q"
	case LevelErrors:
		return "e"
	case LevelWarnings:
		return "w"
	case LevelAll:
		return "a"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}
