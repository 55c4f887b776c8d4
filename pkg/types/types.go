// Package types defines core data structures used across NamePipe modules.
package types

import (
	"time"
)

// FileRecord represents a scanned file handed to the planner.
type FileRecord struct {
	// Name is the base filename including extension.
	Name string `json:"name"`
	// Path is the filesystem path as produced by the scanner.
	Path string `json:"path"`
	// RelativePath is the path relative to the scan root.
	RelativePath string `json:"relativePath"`
}

// Replacement is a literal substitution. Every occurrence of From is replaced.
type Replacement struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// RegexReplacement is a regular expression substitution.
// Replacement uses regexp expansion syntax ($1, ${name}).
type RegexReplacement struct {
	Pattern     string `yaml:"pattern" json:"pattern"`
	Replacement string `yaml:"replacement" json:"replacement"`
}

// SequenceRule numbers files in processing order.
type SequenceRule struct {
	Start   int `yaml:"start" json:"start"`
	Padding int `yaml:"padding" json:"padding"`
	// Template may contain {n} and {name}. Empty means "{n}_{name}".
	Template string `yaml:"template" json:"template,omitempty"`
}

// CaseMode selects a case transformation applied to the whole filename.
type CaseMode string

const (
	CaseNone  CaseMode = ""
	CaseUpper CaseMode = "upper"
	CaseLower CaseMode = "lower"
	CaseTitle CaseMode = "title"
)

// DateSource selects which timestamp of a file is used.
type DateSource string

const (
	DateSourceModify DateSource = "modify"
	DateSourceCreate DateSource = "create"
	DateSourceAccess DateSource = "access"
	// DateSourceEXIF reads the capture time from EXIF, falling back to modify time.
	DateSourceEXIF DateSource = "exif"
)

// DatePosition defines where a formatted date is placed relative to the base name.
type DatePosition string

const (
	DatePositionPrefix DatePosition = "prefix"
	DatePositionSuffix DatePosition = "suffix"
)

// DateRule derives part of the name from a file timestamp.
type DateRule struct {
	Source    DateSource   `yaml:"source" json:"source"`
	Format    string       `yaml:"format" json:"format"`
	Position  DatePosition `yaml:"position" json:"position"`
	Separator string       `yaml:"separator" json:"separator"`
}

// RuleSpec is the full set of rename rules. Every field is optional.
type RuleSpec struct {
	Replace  []Replacement      `yaml:"replace" json:"replace,omitempty"`
	Regex    []RegexReplacement `yaml:"regex" json:"regex,omitempty"`
	Prefix   string             `yaml:"prefix" json:"prefix,omitempty"`
	Suffix   string             `yaml:"suffix" json:"suffix,omitempty"`
	Sequence *SequenceRule      `yaml:"sequence" json:"sequence,omitempty"`
	Case     CaseMode           `yaml:"case" json:"case,omitempty"`
	Date     *DateRule          `yaml:"date" json:"date,omitempty"`
}

// IsEmpty reports whether no rule stage is configured.
func (r RuleSpec) IsEmpty() bool {
	return len(r.Replace) == 0 && len(r.Regex) == 0 && r.Prefix == "" && r.Suffix == "" &&
		r.Sequence == nil && r.Case == CaseNone && r.Date == nil
}

// ConflictStrategy defines how to handle a proposed name already taken in the batch.
type ConflictStrategy string

const (
	ConflictStrategyRename    ConflictStrategy = "rename"
	ConflictStrategySkip      ConflictStrategy = "skip"
	ConflictStrategyOverwrite ConflictStrategy = "overwrite"
)

// SortKey selects the ordering applied before planning.
type SortKey string

const (
	SortNone   SortKey = ""
	SortByName SortKey = "name"
	SortByDate SortKey = "date"
	SortBySize SortKey = "size"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortSpec configures the optional ordering step.
type SortSpec struct {
	By         SortKey    `yaml:"by" json:"by"`
	Order      SortOrder  `yaml:"order" json:"order"`
	DateSource DateSource `yaml:"date_source" json:"date_source,omitempty"`
}

// RenameEntry is one old -> new mapping of a plan.
type RenameEntry struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
}

// PlanError is a per-file failure collected while planning.
type PlanError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// Diagnostic is a non-fatal warning produced while compiling rules.
type Diagnostic struct {
	Kind    string `json:"kind"`
	Pattern string `json:"pattern,omitempty"`
	Message string `json:"message"`
}

// RenamePlan is the side-effect-free description of a batch rename.
type RenamePlan struct {
	ID            string        `json:"id,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	OriginalCount int           `json:"originalCount"`
	RenamedCount  int           `json:"renamedFiles"`
	SkippedCount  int           `json:"skippedFiles"`
	ErrorCount    int           `json:"errorCount"`
	Renames       []RenameEntry `json:"renames"`
	Errors        []PlanError   `json:"errors"`
	Diagnostics   []Diagnostic  `json:"diagnostics,omitempty"`
}

// HasErrors reports whether any file failed during planning.
func (p *RenamePlan) HasErrors() bool {
	return p.ErrorCount > 0
}

// RenameAction represents what happened to a planned rename during execution.
type RenameAction string

const (
	RenameActionRenamed RenameAction = "renamed"
	RenameActionDryRun  RenameAction = "dry-run"
	RenameActionFailed  RenameAction = "failed"
)

// RunSummary contains statistics for a completed run.
type RunSummary struct {
	ScannedFiles int           `json:"scanned_files"`
	Planned      int           `json:"planned"`
	Renamed      int           `json:"renamed"`
	Skipped      int           `json:"skipped"`
	PlanErrors   int           `json:"plan_errors"`
	Failed       int           `json:"failed"`
	DryRun       bool          `json:"dry_run"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration"`
}

// HasErrors reports whether any file failed to plan or to rename.
func (s RunSummary) HasErrors() bool {
	return s.PlanErrors > 0 || s.Failed > 0
}

// RulePreset represents a saved, named rule configuration.
type RulePreset struct {
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	Rules            RuleSpec         `json:"rules"`
	ConflictStrategy ConflictStrategy `json:"conflict_strategy"`
	Sort             SortSpec         `json:"sort"`
	CreatedAt        time.Time        `json:"created_at"`
}

// RunStatus represents the outcome of an executed run.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// RunConfig is the configuration snapshot stored with a history entry.
type RunConfig struct {
	Source           string           `json:"source"`
	Recursive        bool             `json:"recursive"`
	ConflictStrategy ConflictStrategy `json:"conflict_strategy"`
	Rules            RuleSpec         `json:"rules"`
	Sort             SortSpec         `json:"sort"`
	DryRun           bool             `json:"dry_run"`
}

// RunHistoryEntry represents a single executed run.
type RunHistoryEntry struct {
	ID        string     `json:"id"`
	PlanID    string     `json:"plan_id,omitempty"`
	Summary   RunSummary `json:"summary"`
	Config    RunConfig  `json:"config"`
	Status    RunStatus  `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// RunHistory stores the collection of run history entries, newest first.
type RunHistory struct {
	Entries   []RunHistoryEntry `json:"entries"`
	UpdatedAt time.Time         `json:"updated_at"`
}
