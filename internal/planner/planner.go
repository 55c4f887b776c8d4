// Package planner builds a RenamePlan from scanned files and a rule set.
// It never touches the filesystem beyond the stat calls a date rule needs.
package planner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/On-Jun9/NamePipe/internal/metadata"
	"github.com/On-Jun9/NamePipe/internal/policy"
	"github.com/On-Jun9/NamePipe/internal/rules"
	"github.com/On-Jun9/NamePipe/pkg/types"
)

var (
	ErrEmptyName   = errors.New("rules produced an empty file name")
	ErrInvalidName = errors.New("rules produced a name containing a path separator")
)

type Planner struct {
	engine   *rules.Engine
	diags    []types.Diagnostic
	date     *types.DateRule
	meta     *metadata.Resolver
	strategy types.ConflictStrategy
	now      func() time.Time
}

// New compiles spec once for the whole batch. Diagnostics from compiling
// are attached to every plan the Planner builds.
func New(spec types.RuleSpec, strategy types.ConflictStrategy, meta *metadata.Resolver) *Planner {
	engine, diags := rules.Compile(spec)
	if meta == nil {
		meta = metadata.New(nil)
	}
	if strategy == "" {
		strategy = types.ConflictStrategyRename
	}
	return &Planner{
		engine:   engine,
		diags:    diags,
		date:     spec.Date,
		meta:     meta,
		strategy: strategy,
		now:      time.Now,
	}
}

// planState is the accumulator threaded through the batch. seen only grows,
// in file order, so every file sees the names resolved before it.
type planState struct {
	seen policy.NameSet
	plan *types.RenamePlan
}

func (s *planState) fail(file types.FileRecord, err error) {
	s.plan.ErrorCount++
	s.plan.Errors = append(s.plan.Errors, types.PlanError{File: file.Path, Message: err.Error()})
}

func (s *planState) admit(file types.FileRecord, candidate string, strategy types.ConflictStrategy) {
	res := policy.Resolve(candidate, s.seen, strategy)
	if !res.Admitted {
		s.plan.SkippedCount++
		return
	}
	s.seen.Admit(res.Name)

	if res.Name == file.Name {
		return
	}

	s.plan.RenamedCount++
	s.plan.Renames = append(s.plan.Renames, types.RenameEntry{
		OldName: file.Name,
		NewName: res.Name,
		OldPath: file.Path,
		NewPath: filepath.Join(filepath.Dir(file.Path), res.Name),
	})
}

// Plan builds the plan for files in the given order. Per-file failures are
// recorded in the plan; only context cancellation, checked between files,
// stops the batch.
func (p *Planner) Plan(ctx context.Context, files []types.FileRecord) (*types.RenamePlan, error) {
	state := &planState{
		seen: policy.NewNameSet(),
		plan: &types.RenamePlan{
			ID:            uuid.NewString(),
			CreatedAt:     p.now(),
			OriginalCount: len(files),
			Renames:       []types.RenameEntry{},
			Errors:        []types.PlanError{},
			Diagnostics:   p.diags,
		},
	}

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidate, err := p.candidate(file, i)
		if err != nil {
			state.fail(file, err)
			continue
		}
		state.admit(file, candidate, p.strategy)
	}

	return state.plan, nil
}

// candidate runs the date rule and then the rule engine for one file.
func (p *Planner) candidate(file types.FileRecord, index int) (name string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while planning: %v", r)
		}
	}()

	name = file.Name
	if p.date != nil {
		t, err := p.meta.FileDate(file.Path, p.date.Source)
		if err != nil {
			return "", err
		}
		name = metadata.RenameByDate(name, t, *p.date)
	}

	name = p.engine.Apply(name, index)

	if name == "" {
		return "", ErrEmptyName
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}
