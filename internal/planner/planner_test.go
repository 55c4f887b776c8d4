package planner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/On-Jun9/NamePipe/internal/metadata"
	"github.com/On-Jun9/NamePipe/pkg/types"
)

func records(paths ...string) []types.FileRecord {
	var out []types.FileRecord
	for _, p := range paths {
		out = append(out, types.FileRecord{Name: filepath.Base(p), Path: p, RelativePath: filepath.Base(p)})
	}
	return out
}

func TestPlanner_Plan_DuplicateNamesRenamed(t *testing.T) {
	p := New(types.RuleSpec{}, types.ConflictStrategyRename, nil)

	plan, err := p.Plan(context.Background(), records("/one/b.txt", "/one/a.txt", "/two/a.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.OriginalCount != 3 {
		t.Errorf("expected original count 3, got %d", plan.OriginalCount)
	}
	if plan.RenamedCount != 1 || plan.SkippedCount != 0 || plan.ErrorCount != 0 {
		t.Fatalf("unexpected counts: renamed=%d skipped=%d errors=%d", plan.RenamedCount, plan.SkippedCount, plan.ErrorCount)
	}
	if len(plan.Renames) != 1 {
		t.Fatalf("expected 1 rename, got %d", len(plan.Renames))
	}

	got := plan.Renames[0]
	want := types.RenameEntry{
		OldName: "a.txt",
		NewName: "a_1.txt",
		OldPath: "/two/a.txt",
		NewPath: filepath.Join("/two", "a_1.txt"),
	}
	if got != want {
		t.Fatalf("unexpected rename: %+v", got)
	}
}

func TestPlanner_Plan_SkipStrategyCountsSkipped(t *testing.T) {
	p := New(types.RuleSpec{Replace: []types.Replacement{{From: "draft", To: "final"}}}, types.ConflictStrategySkip, nil)

	plan, err := p.Plan(context.Background(), records("/d/draft.txt", "/d/final.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// draft.txt claims final.txt first; the real final.txt then collides.
	if plan.RenamedCount != 1 || plan.SkippedCount != 1 {
		t.Fatalf("unexpected counts: renamed=%d skipped=%d", plan.RenamedCount, plan.SkippedCount)
	}
	if plan.Renames[0].NewName != "final.txt" {
		t.Fatalf("unexpected rename target: %s", plan.Renames[0].NewName)
	}
}

func TestPlanner_Plan_OverwriteAdmitsSameName(t *testing.T) {
	p := New(types.RuleSpec{Prefix: "x"}, types.ConflictStrategyOverwrite, nil)

	plan, err := p.Plan(context.Background(), records("/a/1.txt", "/b/1.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.RenamedCount != 2 || plan.SkippedCount != 0 {
		t.Fatalf("unexpected counts: renamed=%d skipped=%d", plan.RenamedCount, plan.SkippedCount)
	}
	if plan.Renames[0].NewName != "x1.txt" || plan.Renames[1].NewName != "x1.txt" {
		t.Fatalf("overwrite should keep the candidate name: %+v", plan.Renames)
	}
}

func TestPlanner_Plan_UnchangedNamesAreNoOps(t *testing.T) {
	p := New(types.RuleSpec{Case: types.CaseLower}, types.ConflictStrategyRename, nil)

	plan, err := p.Plan(context.Background(), records("/d/already.txt", "/d/Upper.TXT"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.RenamedCount != 1 || len(plan.Renames) != 1 {
		t.Fatalf("expected exactly one rename, got %+v", plan.Renames)
	}
	if plan.Renames[0].NewName != "upper.txt" {
		t.Fatalf("unexpected rename: %+v", plan.Renames[0])
	}
}

func TestPlanner_Plan_SequenceUsesBatchPosition(t *testing.T) {
	p := New(types.RuleSpec{Sequence: &types.SequenceRule{Start: 1, Padding: 3, Template: "{n}_{name}"}}, "", nil)

	plan, err := p.Plan(context.Background(), records("/d/x.jpg", "/d/y.jpg", "/d/z.jpg"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"001_x.jpg", "002_y.jpg", "003_z.jpg"}
	for i, w := range want {
		if plan.Renames[i].NewName != w {
			t.Fatalf("rename %d: expected %s, got %s", i, w, plan.Renames[i].NewName)
		}
	}
}

func TestPlanner_Plan_DateRuleStatErrorIsIsolated(t *testing.T) {
	fs := afero.NewMemMapFs()
	mtime := time.Date(2026, 2, 11, 8, 0, 0, 0, time.UTC)
	if err := afero.WriteFile(fs, "/d/ok.jpg", []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := fs.Chtimes("/d/ok.jpg", mtime, mtime); err != nil {
		t.Fatal(err)
	}

	spec := types.RuleSpec{Date: &types.DateRule{Source: types.DateSourceModify, Format: "YYYYMMDD", Position: types.DatePositionPrefix, Separator: "_"}}
	p := New(spec, types.ConflictStrategyRename, metadata.New(fs))

	plan, err := p.Plan(context.Background(), records("/d/missing.jpg", "/d/ok.jpg"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.ErrorCount != 1 || len(plan.Errors) != 1 {
		t.Fatalf("expected 1 error, got %+v", plan.Errors)
	}
	if plan.Errors[0].File != "/d/missing.jpg" {
		t.Fatalf("error attributed to wrong file: %+v", plan.Errors[0])
	}
	if plan.RenamedCount != 1 || plan.Renames[0].NewName != "20260211_ok.jpg" {
		t.Fatalf("expected the healthy file to be renamed, got %+v", plan.Renames)
	}
}

func TestPlanner_Plan_DateRuleRunsBeforeRegex(t *testing.T) {
	fs := afero.NewMemMapFs()
	mtime := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	afero.WriteFile(fs, "/d/a.txt", []byte("x"), 0644)
	fs.Chtimes("/d/a.txt", mtime, mtime)

	spec := types.RuleSpec{
		Date:  &types.DateRule{Format: "YYYY-MM-DD", Position: types.DatePositionPrefix, Separator: "_"},
		Regex: []types.RegexReplacement{{Pattern: `^(\d{4})-\d{2}-\d{2}`, Replacement: "y$1"}},
	}
	p := New(spec, "", metadata.New(fs))

	plan, _ := p.Plan(context.Background(), records("/d/a.txt"))
	if len(plan.Renames) != 1 || plan.Renames[0].NewName != "y2024_a.txt" {
		t.Fatalf("unexpected renames: %+v", plan.Renames)
	}
}

func TestPlanner_Plan_EmptyAndInvalidNamesAreErrors(t *testing.T) {
	p := New(types.RuleSpec{Regex: []types.RegexReplacement{{Pattern: `^gone.*`, Replacement: ""}, {Pattern: `-`, Replacement: "/"}}}, "", nil)

	plan, _ := p.Plan(context.Background(), records("/d/gone.txt", "/d/a-b.txt", "/d/fine.txt"))
	if plan.ErrorCount != 2 {
		t.Fatalf("expected 2 errors, got %+v", plan.Errors)
	}
	if plan.Errors[0].Message != ErrEmptyName.Error() {
		t.Fatalf("unexpected first error: %s", plan.Errors[0].Message)
	}
	if plan.RenamedCount != 0 || plan.SkippedCount != 0 {
		t.Fatalf("unexpected counts: %+v", plan)
	}
}

func TestPlanner_Plan_InvalidRegexBecomesDiagnostic(t *testing.T) {
	p := New(types.RuleSpec{Regex: []types.RegexReplacement{{Pattern: "(", Replacement: ""}}}, "", nil)

	plan, err := p.Plan(context.Background(), records("/d/a.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Diagnostics) != 1 || plan.ErrorCount != 0 {
		t.Fatalf("expected one diagnostic and no errors, got %+v", plan)
	}
}

func TestPlanner_Plan_CountsNeverExceedOriginal(t *testing.T) {
	p := New(types.RuleSpec{Replace: []types.Replacement{{From: "b", To: "a"}}}, types.ConflictStrategySkip, nil)

	plan, _ := p.Plan(context.Background(), records("/d/a", "/d/b", "/d/c", "/d/b"))
	if plan.RenamedCount+plan.SkippedCount+plan.ErrorCount > plan.OriginalCount {
		t.Fatalf("counts exceed original: %+v", plan)
	}

	seen := map[string]bool{}
	for _, r := range plan.Renames {
		if seen[r.NewName] {
			t.Fatalf("duplicate target %s", r.NewName)
		}
		seen[r.NewName] = true
	}
}

func TestPlanner_Plan_StopsOnCancelledContext(t *testing.T) {
	p := New(types.RuleSpec{Prefix: "x"}, "", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Plan(ctx, records("/d/a"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPlanner_Plan_EmptyInput(t *testing.T) {
	p := New(types.RuleSpec{}, "", nil)
	plan, err := p.Plan(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.OriginalCount != 0 || plan.Renames == nil || plan.Errors == nil {
		t.Fatalf("expected an empty, non-nil plan: %+v", plan)
	}
	if plan.ID == "" {
		t.Fatal("expected plan id")
	}
}
