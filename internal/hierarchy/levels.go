// Package hierarchy holds the in-memory model of the five-level
// organizational tree and the builder that folds tabular rows into it.
// It knows nothing about the remote service or any I/O.
package hierarchy

// Level is one of the five fixed ranks, ordered root to leaf. The sequence
// is process-wide and not configuration.
type Level string

const (
	LevelDivision        Level = "division"
	LevelFacility        Level = "facility"
	LevelDepartment      Level = "department"
	LevelBusinessUnit    Level = "bu"
	LevelBusinessSubUnit Level = "bsu"
)

var levelOrder = [...]Level{
	LevelDivision,
	LevelFacility,
	LevelDepartment,
	LevelBusinessUnit,
	LevelBusinessSubUnit,
}

// NumLevels is the depth of the hierarchy.
const NumLevels = len(levelOrder)

// Levels returns the fixed root-to-leaf level sequence.
func Levels() []Level {
	out := make([]Level, NumLevels)
	copy(out, levelOrder[:])
	return out
}

func (l Level) String() string { return string(l) }

// Index returns the level's position in the root-to-leaf order, or -1 for an
// unknown level.
func (l Level) Index() int {
	for i, lvl := range levelOrder {
		if lvl == l {
			return i
		}
	}
	return -1
}

func (l Level) Valid() bool { return l.Index() >= 0 }
