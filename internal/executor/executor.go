// Package executor applies a RenamePlan to the filesystem, one file at a time.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/On-Jun9/NamePipe/internal/verify"
	"github.com/On-Jun9/NamePipe/pkg/types"
)

// ErrTargetExists is returned when a rename would replace a file that is not
// itself being renamed away and overwriting was not requested.
var ErrTargetExists = errors.New("target already exists")

type Options struct {
	DryRun bool
	// Overwrite allows replacing files that exist at a target path.
	Overwrite bool
	// Verify checks every renamed file at its new path.
	Verify bool
	// HashVerify additionally compares SHA-256 content hashes.
	HashVerify bool
}

type Executor struct {
	fs       afero.Fs
	opts     Options
	verifier *verify.Verifier
	progress func(done, total int, result Result)
}

func New(fs afero.Fs, opts Options) *Executor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Executor{
		fs:       fs,
		opts:     opts,
		verifier: verify.New(fs, opts.HashVerify),
	}
}

// SetProgressCallback registers fn to be called after every entry.
func (e *Executor) SetProgressCallback(fn func(done, total int, result Result)) {
	e.progress = fn
}

type Result struct {
	Entry  types.RenameEntry
	Action types.RenameAction
	Error  error
}

type Report struct {
	Results []Result
	Renamed int
	Failed  int
}

// Execute performs every rename of plan in order. A failure is recorded for
// its entry and the remaining entries still run. Cancellation is honoured
// between entries.
//
// When one entry's target is another pending entry's source, all entries go
// through a temporary name first so no file is clobbered mid-batch.
func (e *Executor) Execute(ctx context.Context, plan *types.RenamePlan) (*Report, error) {
	report := &Report{}
	total := len(plan.Renames)

	if e.opts.DryRun {
		for i, entry := range plan.Renames {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			e.record(report, Result{Entry: entry, Action: types.RenameActionDryRun}, i+1, total)
		}
		return report, nil
	}

	if needsStaging(plan.Renames) {
		return e.executeStaged(ctx, plan, report)
	}

	sources := sourceSet(plan.Renames)
	for i, entry := range plan.Renames {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		err := e.renameOne(entry.OldPath, entry.NewPath, sources)
		e.record(report, resultFor(entry, err), i+1, total)
	}
	return report, nil
}

// executeStaged moves every source to a temporary name and then to its
// target. Cancellation is honoured only while staging; files staged so far are
// moved back before returning. Once staging completes every entry is finished.
func (e *Executor) executeStaged(ctx context.Context, plan *types.RenamePlan, report *Report) (*Report, error) {
	total := len(plan.Renames)
	staged := make([]string, total)
	stageErr := make([]error, total)

	if err := ctx.Err(); err != nil {
		return report, err
	}

	for i, entry := range plan.Renames {
		tmp := filepath.Join(filepath.Dir(entry.OldPath), fmt.Sprintf(".namepipe-%s-%d", plan.ID, i))
		if err := e.fs.Rename(entry.OldPath, tmp); err != nil {
			stageErr[i] = err
		} else {
			staged[i] = tmp
		}

		if err := ctx.Err(); err != nil {
			e.unstage(plan.Renames[:i+1], staged, report, total)
			return report, err
		}
	}

	// Only sources that actually moved away are free to be written over.
	vacated := make(map[string]bool, total)
	for i, entry := range plan.Renames {
		if staged[i] != "" {
			vacated[filepath.Clean(entry.OldPath)] = true
		}
	}
	targets := make(map[string]int, total)
	for i, entry := range plan.Renames {
		targets[filepath.Clean(entry.NewPath)] = i
	}

	for i, entry := range plan.Renames {
		if stageErr[i] != nil {
			e.record(report, resultFor(entry, stageErr[i]), i+1, total)
			continue
		}
		err := e.renameOne(staged[i], entry.NewPath, vacated)
		if err != nil {
			err = e.restore(i, entry, staged[i], targets, err)
		}
		e.record(report, resultFor(entry, err), i+1, total)
	}
	return report, nil
}

// unstage moves staged files back to their original names. A file that cannot
// be moved back is reported as failed with its temporary path.
func (e *Executor) unstage(entries []types.RenameEntry, staged []string, report *Report, total int) {
	for i, entry := range entries {
		if staged[i] == "" {
			continue
		}
		if err := e.fs.Rename(staged[i], entry.OldPath); err != nil {
			err = fmt.Errorf("restore %s: %w; file left at %s", entry.OldPath, err, staged[i])
			e.record(report, resultFor(entry, err), i+1, total)
		}
	}
}

// restore puts a staged file back after its final rename failed. The original
// path may already belong to another entry's target; the file then stays at
// its temporary name and the error says where.
func (e *Executor) restore(i int, entry types.RenameEntry, tmp string, targets map[string]int, cause error) error {
	// verification failures happen after the file already left tmp
	if _, err := e.fs.Stat(tmp); err != nil {
		return cause
	}
	if j, ok := targets[filepath.Clean(entry.OldPath)]; ok && j != i {
		return fmt.Errorf("%w; %s is the target of entry %d, file left at %s", cause, entry.OldPath, j+1, tmp)
	}
	if _, err := e.fs.Stat(entry.OldPath); err == nil {
		return fmt.Errorf("%w; %s is occupied, file left at %s", cause, entry.OldPath, tmp)
	}
	if err := e.fs.Rename(tmp, entry.OldPath); err != nil {
		return fmt.Errorf("%w; restore failed (%v), file left at %s", cause, err, tmp)
	}
	return cause
}

func (e *Executor) renameOne(from, to string, sources map[string]bool) error {
	fp, err := e.verifier.Snapshot(from)
	if err != nil {
		return err
	}

	if !e.opts.Overwrite && !sources[filepath.Clean(to)] {
		if _, err := e.fs.Stat(to); err == nil {
			return fmt.Errorf("%s: %w", to, ErrTargetExists)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	if err := e.fs.Rename(from, to); err != nil {
		return err
	}

	if e.opts.Verify {
		return e.verifier.Verify(to, fp)
	}
	return nil
}

func (e *Executor) record(report *Report, result Result, done, total int) {
	report.Results = append(report.Results, result)
	switch result.Action {
	case types.RenameActionRenamed:
		report.Renamed++
	case types.RenameActionFailed:
		report.Failed++
	}
	if e.progress != nil {
		e.progress(done, total, result)
	}
}

func resultFor(entry types.RenameEntry, err error) Result {
	if err != nil {
		return Result{Entry: entry, Action: types.RenameActionFailed, Error: err}
	}
	return Result{Entry: entry, Action: types.RenameActionRenamed}
}

func sourceSet(entries []types.RenameEntry) map[string]bool {
	set := make(map[string]bool, len(entries))
	for _, e := range entries {
		set[filepath.Clean(e.OldPath)] = true
	}
	return set
}

// needsStaging reports whether any target path is also a source path.
func needsStaging(entries []types.RenameEntry) bool {
	sources := sourceSet(entries)
	for _, e := range entries {
		if sources[filepath.Clean(e.NewPath)] {
			return true
		}
	}
	return false
}
