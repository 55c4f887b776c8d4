// Package policy resolves name collisions inside a single planning pass.
package policy

import (
	"fmt"

	"github.com/On-Jun9/NamePipe/internal/naming"
	"github.com/On-Jun9/NamePipe/pkg/types"
)

// NameSet is the set of names already admitted in the current batch.
type NameSet map[string]struct{}

func NewNameSet() NameSet {
	return make(NameSet)
}

func (s NameSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Admit records name as taken. Callers admit every accepted name right away
// so later files see it.
func (s NameSet) Admit(name string) {
	s[name] = struct{}{}
}

// Resolution is the outcome of checking one candidate name.
type Resolution struct {
	// Name is the name to use when Admitted is true.
	Name string
	// Conflict is true when the candidate was already taken.
	Conflict bool
	// Admitted is false only when the skip strategy rejected the candidate.
	Admitted bool
}

// ValidStrategy reports whether strategy is empty or a known strategy.
func ValidStrategy(strategy types.ConflictStrategy) bool {
	switch strategy {
	case "", types.ConflictStrategyRename, types.ConflictStrategySkip, types.ConflictStrategyOverwrite:
		return true
	}
	return false
}

// Resolve checks candidate against seen. It never modifies seen.
// An empty or unknown strategy behaves like rename.
func Resolve(candidate string, seen NameSet, strategy types.ConflictStrategy) Resolution {
	if !seen.Contains(candidate) {
		return Resolution{Name: candidate, Admitted: true}
	}

	switch strategy {
	case types.ConflictStrategySkip:
		return Resolution{Name: candidate, Conflict: true}

	case types.ConflictStrategyOverwrite:
		return Resolution{Name: candidate, Conflict: true, Admitted: true}

	default:
		return Resolution{Name: generateUniqueName(candidate, seen), Conflict: true, Admitted: true}
	}
}

// generateUniqueName appends _1, _2, ... before the extension until the name
// is free. seen is finite, so the loop terminates.
func generateUniqueName(name string, seen NameSet) string {
	base, ext := naming.Split(name)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if !seen.Contains(candidate) {
			return candidate
		}
	}
}
