package policy

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/On-Jun9/NamePipe/pkg/types"
)

func seenOf(names ...string) NameSet {
	s := NewNameSet()
	for _, n := range names {
		s.Admit(n)
	}
	return s
}

func TestResolve_NoConflict(t *testing.T) {
	for _, strategy := range []types.ConflictStrategy{types.ConflictStrategyRename, types.ConflictStrategySkip, types.ConflictStrategyOverwrite} {
		res := Resolve("photo.jpg", seenOf("other.jpg"), strategy)
		assert.Equal(t, Resolution{Name: "photo.jpg", Admitted: true}, res, "strategy=%s", strategy)
	}
}

func TestResolve_RenameFindsFirstFreeCounter(t *testing.T) {
	res := Resolve("a.txt", seenOf("a.txt", "a_1.txt"), types.ConflictStrategyRename)

	assert.True(t, res.Conflict)
	assert.True(t, res.Admitted)
	assert.Equal(t, "a_2.txt", res.Name)
}

func TestResolve_RenameWithoutExtension(t *testing.T) {
	res := Resolve("README", seenOf("README"), types.ConflictStrategyRename)
	assert.Equal(t, "README_1", res.Name)
}

func TestResolve_Skip(t *testing.T) {
	seen := seenOf("a.txt")
	res := Resolve("a.txt", seen, types.ConflictStrategySkip)

	assert.True(t, res.Conflict)
	assert.False(t, res.Admitted)
	assert.Len(t, seen, 1, "resolve must not admit names itself")
}

func TestResolve_OverwriteKeepsCandidate(t *testing.T) {
	res := Resolve("a.txt", seenOf("a.txt"), types.ConflictStrategyOverwrite)

	assert.True(t, res.Conflict)
	assert.True(t, res.Admitted)
	assert.Equal(t, "a.txt", res.Name)
}

func TestResolve_EmptyAndUnknownStrategyFallBackToRename(t *testing.T) {
	for _, strategy := range []types.ConflictStrategy{"", "quarantine"} {
		res := Resolve("a.txt", seenOf("a.txt"), strategy)
		assert.Equal(t, "a_1.txt", res.Name, "strategy=%q", strategy)
		assert.True(t, res.Admitted)
	}
}

func TestResolve_SequentialAdmissions(t *testing.T) {
	seen := NewNameSet()
	var got []string
	for i := 0; i < 4; i++ {
		res := Resolve("clip.mp4", seen, types.ConflictStrategyRename)
		seen.Admit(res.Name)
		got = append(got, res.Name)
	}
	assert.Equal(t, []string{"clip.mp4", "clip_1.mp4", "clip_2.mp4", "clip_3.mp4"}, got)
}

func TestGenerateUniqueName_SkipsManyTakenCounters(t *testing.T) {
	seen := seenOf("photo.jpg")
	for i := 1; i < 10000; i++ {
		seen.Admit("photo_" + strconv.Itoa(i) + ".jpg")
	}

	assert.Equal(t, "photo_10000.jpg", generateUniqueName("photo.jpg", seen))
}

func TestValidStrategy(t *testing.T) {
	assert.True(t, ValidStrategy(""))
	assert.True(t, ValidStrategy(types.ConflictStrategyOverwrite))
	assert.False(t, ValidStrategy("quarantine"))
}
