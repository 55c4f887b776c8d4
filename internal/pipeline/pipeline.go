// Package pipeline wires scanning, sorting, planning and execution into a
// single run shared by the CLI and the web UI.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"

	"github.com/On-Jun9/NamePipe/internal/config"
	"github.com/On-Jun9/NamePipe/internal/executor"
	"github.com/On-Jun9/NamePipe/internal/filelock"
	"github.com/On-Jun9/NamePipe/internal/log"
	"github.com/On-Jun9/NamePipe/internal/metadata"
	"github.com/On-Jun9/NamePipe/internal/planner"
	"github.com/On-Jun9/NamePipe/internal/report"
	"github.com/On-Jun9/NamePipe/internal/scanner"
	"github.com/On-Jun9/NamePipe/internal/sorter"
	"github.com/On-Jun9/NamePipe/pkg/types"
)

// ErrRunInProgress is returned when another process sharing the data
// directory is renaming files.
var ErrRunInProgress = errors.New("another rename run is in progress")

type Pipeline struct {
	cfg              *config.Config
	fs               afero.Fs
	meta             *metadata.Resolver
	logger           *log.Logger
	history          *config.HistoryManager
	progressCallback ProgressCallback
}

type Option func(*Pipeline)

// WithFs replaces the OS filesystem, mainly for tests.
func WithFs(fs afero.Fs) Option {
	return func(p *Pipeline) { p.fs = fs }
}

// WithLogger replaces the file logger built from the config.
func WithLogger(logger *log.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithHistory replaces the history store under cfg.DataDir.
func WithHistory(history *config.HistoryManager) Option {
	return func(p *Pipeline) { p.history = history }
}

func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}

	if p.fs == nil {
		p.fs = afero.NewOsFs()
	}
	p.meta = metadata.New(p.fs)

	if p.logger == nil {
		logger, err := log.New(cfg.LogFile, cfg.LogJSON, true)
		if err != nil {
			return nil, err
		}
		p.logger = logger
	}

	if p.history == nil {
		history, err := config.NewHistoryManager(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create history manager: %w", err)
		}
		p.history = history
	}

	return p, nil
}

func (p *Pipeline) SetProgressCallback(cb ProgressCallback) {
	p.progressCallback = cb
}

func (p *Pipeline) emit(update ProgressUpdate) {
	if p.progressCallback != nil {
		p.progressCallback(update)
	}
}

// Plan validates the configuration, scans the source, applies the optional
// sort and builds the rename plan. Nothing is renamed.
func (p *Pipeline) Plan(ctx context.Context) (*types.RenamePlan, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	p.logger.Info("Starting scan: '" + p.cfg.Source + "'")
	p.emit(ProgressUpdate{Type: "status", Message: "Scanning files..."})

	files, err := scanner.New(p.fs, p.cfg.IncludeExtensions, p.cfg.Recursive).Scan(p.cfg.Source)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Found " + strconv.Itoa(len(files)) + " files")

	if p.cfg.Sort.By != types.SortNone {
		files, err = sorter.New(p.meta).Sort(files, p.cfg.Sort)
		if err != nil {
			return nil, err
		}
	}

	p.emit(ProgressUpdate{Type: "status", Message: "Building rename plan...", Total: len(files)})

	plan, err := planner.New(p.cfg.Rules, p.cfg.ConflictStrategy, p.meta).Plan(ctx, files)
	if err != nil {
		return nil, err
	}

	p.logger.Diagnostics(plan.Diagnostics)
	for _, e := range plan.Errors {
		p.logger.Error("Failed to plan "+e.File, fmt.Errorf("%s", e.Message))
	}
	p.logger.Info(fmt.Sprintf("Planned %d renames (%d skipped, %d errors)", plan.RenamedCount, plan.SkippedCount, plan.ErrorCount))

	p.emit(ProgressUpdate{Type: "plan", Plan: plan, Total: len(plan.Renames)})
	return plan, nil
}

// Run plans, exports the plan when configured and executes it.
func (p *Pipeline) Run(ctx context.Context) (*types.RunSummary, error) {
	startTime := time.Now()

	plan, err := p.Plan(ctx)
	if err != nil {
		summary := &types.RunSummary{
			DryRun:    p.cfg.DryRun,
			StartTime: startTime,
			EndTime:   time.Now(),
		}
		summary.Duration = summary.EndTime.Sub(startTime)
		p.record(ctx, "", summary, types.RunStatusFailed)
		p.emit(ProgressUpdate{Type: "error", Error: err.Error()})
		return nil, err
	}

	if p.cfg.Export.Path != "" {
		if err := report.Save(ctx, p.cfg.Export.Path, plan, p.cfg.Export.Format); err != nil {
			p.emit(ProgressUpdate{Type: "error", Error: err.Error()})
			return nil, err
		}
		p.logger.Info("Exported plan to " + p.cfg.Export.Path)
	}

	if p.cfg.DryRun {
		p.logger.Plan(plan)
	}

	return p.execute(ctx, plan, startTime)
}

// Execute applies an existing plan, such as one re-imported from a JSON export.
func (p *Pipeline) Execute(ctx context.Context, plan *types.RenamePlan) (*types.RunSummary, error) {
	return p.execute(ctx, plan, time.Now())
}

func (p *Pipeline) execute(ctx context.Context, plan *types.RenamePlan, startTime time.Time) (*types.RunSummary, error) {
	if !p.cfg.DryRun {
		release, err := p.lockRun()
		if err != nil {
			p.logger.Error("Run not started", err)
			p.emit(ProgressUpdate{Type: "error", Error: err.Error()})
			return nil, err
		}
		defer release()
	}

	summary := &types.RunSummary{
		ScannedFiles: plan.OriginalCount,
		Planned:      len(plan.Renames),
		Skipped:      plan.SkippedCount,
		PlanErrors:   plan.ErrorCount,
		DryRun:       p.cfg.DryRun,
		StartTime:    startTime,
	}

	exec := executor.New(p.fs, executor.Options{
		DryRun:     p.cfg.DryRun,
		Overwrite:  p.cfg.ConflictStrategy == types.ConflictStrategyOverwrite,
		Verify:     p.cfg.Verify,
		HashVerify: p.cfg.HashVerify,
	})
	exec.SetProgressCallback(func(done, total int, result executor.Result) {
		p.logger.LogRename(result.Entry, result.Action, result.Error)
		if p.progressCallback == nil {
			p.logger.Progress(done, total, result.Entry.OldName)
			return
		}
		update := ProgressUpdate{
			Type:     "progress",
			Current:  done,
			Total:    total,
			Filename: result.Entry.OldName,
			NewName:  result.Entry.NewName,
			Action:   result.Action,
		}
		if result.Error != nil {
			update.Error = result.Error.Error()
		}
		p.progressCallback(update)
	})

	rep, execErr := exec.Execute(ctx, plan)
	summary.Renamed = rep.Renamed
	summary.Failed = rep.Failed
	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(startTime)

	p.logger.Summary(*summary)

	status := types.RunStatusSuccess
	if execErr != nil || summary.HasErrors() {
		status = types.RunStatusFailed
	}
	p.record(ctx, plan.ID, summary, status)

	if execErr != nil {
		p.emit(ProgressUpdate{Type: "error", Error: execErr.Error(), Summary: summary})
		return summary, execErr
	}

	p.emit(ProgressUpdate{Type: "complete", Summary: summary})
	return summary, nil
}

// lockRun takes the data directory's run lock without waiting.
func (p *Pipeline) lockRun() (func(), error) {
	lock := filelock.For(filepath.Join(p.cfg.DataDir, "run"))
	ok, err := lock.TryAcquire()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrRunInProgress, lock.Path())
	}
	return func() {
		if err := lock.Release(); err != nil {
			p.logger.Error("Failed to release run lock", err)
		}
	}, nil
}

// record appends the run to history. Dry runs are not recorded, and a
// history failure never fails the run.
func (p *Pipeline) record(ctx context.Context, planID string, summary *types.RunSummary, status types.RunStatus) {
	if p.cfg.DryRun {
		return
	}

	entry := types.RunHistoryEntry{
		PlanID:    planID,
		Summary:   *summary,
		Config:    p.cfg.Snapshot(),
		Status:    status,
		CreatedAt: summary.StartTime,
	}
	if _, err := p.history.Add(context.WithoutCancel(ctx), entry); err != nil {
		p.logger.Error("Failed to save run history", err)
	}
}

func (p *Pipeline) Close() error {
	return p.logger.Close()
}
