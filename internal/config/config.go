package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/On-Jun9/NamePipe/internal/metadata"
	"github.com/On-Jun9/NamePipe/internal/policy"
	"github.com/On-Jun9/NamePipe/internal/report"
	"github.com/On-Jun9/NamePipe/internal/rules"
	"github.com/On-Jun9/NamePipe/internal/sorter"
	"github.com/On-Jun9/NamePipe/pkg/types"
)

// ExportConfig writes the plan to Path before it is executed.
type ExportConfig struct {
	Format string `yaml:"format" json:"format"`
	Path   string `yaml:"path" json:"path"`
}

type Config struct {
	Source            string                 `yaml:"source" json:"source"`
	Recursive         bool                   `yaml:"recursive" json:"recursive"`
	IncludeExtensions []string               `yaml:"include_extensions" json:"include_extensions"`
	ConflictStrategy  types.ConflictStrategy `yaml:"conflict_strategy" json:"conflict_strategy"`
	Sort              types.SortSpec         `yaml:"sort" json:"sort"`
	Rules             types.RuleSpec         `yaml:"rules" json:"rules"`
	Export            ExportConfig           `yaml:"export" json:"export"`
	DryRun            bool                   `yaml:"dry_run" json:"dry_run"`
	Verify            bool                   `yaml:"verify" json:"verify"`
	HashVerify        bool                   `yaml:"hash_verify" json:"hash_verify"`
	LogFile           string                 `yaml:"log_file" json:"log_file"`
	LogJSON           bool                   `yaml:"log_json" json:"log_json"`
	DataDir           string                 `yaml:"data_dir" json:"data_dir"`
}

// DefaultDataDir is ~/.namepipe, or .namepipe in the working directory when
// the home directory cannot be resolved.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".namepipe"
	}
	return filepath.Join(homeDir, ".namepipe")
}

func DefaultConfig() *Config {
	dataDir := DefaultDataDir()

	return &Config{
		IncludeExtensions: []string{},
		ConflictStrategy:  types.ConflictStrategyRename,
		Sort:              types.SortSpec{Order: types.SortAsc},
		Verify:            true,
		LogFile:           filepath.Join(dataDir, "namepipe.log"),
		DataDir:           dataDir,
	}
}

func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects configurations that cannot be planned and fills in
// defaults for optional fields. It runs before any file is touched.
func (c *Config) Validate() error {
	if c.Source == "" {
		return &ValidationError{Field: "source", Message: "source path is required"}
	}
	if !policy.ValidStrategy(c.ConflictStrategy) {
		return &ValidationError{Field: "conflict_strategy", Message: fmt.Sprintf("unknown strategy %q (want rename, skip or overwrite)", c.ConflictStrategy)}
	}
	if !sorter.ValidKey(c.Sort.By) {
		return &ValidationError{Field: "sort.by", Message: fmt.Sprintf("unknown sort key %q (want name, date or size)", c.Sort.By)}
	}
	if !sorter.ValidOrder(c.Sort.Order) {
		return &ValidationError{Field: "sort.order", Message: fmt.Sprintf("unknown sort order %q (want asc or desc)", c.Sort.Order)}
	}
	if !metadata.ValidSource(c.Sort.DateSource) {
		return &ValidationError{Field: "sort.date_source", Message: fmt.Sprintf("unknown date source %q", c.Sort.DateSource)}
	}
	if err := validateRules(c.Rules); err != nil {
		return err
	}
	if c.Export.Format != "" {
		if _, err := report.ParseFormat(c.Export.Format); err != nil {
			return &ValidationError{Field: "export.format", Message: err.Error()}
		}
	}

	if c.ConflictStrategy == "" {
		c.ConflictStrategy = types.ConflictStrategyRename
	}
	if c.Sort.Order == "" {
		c.Sort.Order = types.SortAsc
	}
	if c.Export.Path != "" && c.Export.Format == "" {
		c.Export.Format = string(report.FormatJSON)
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, "namepipe.log")
	}

	return nil
}

func validateRules(r types.RuleSpec) error {
	if !rules.ValidCaseMode(r.Case) {
		return &ValidationError{Field: "rules.case", Message: fmt.Sprintf("unknown case mode %q (want upper, lower or title)", r.Case)}
	}
	if seq := r.Sequence; seq != nil {
		if seq.Start < 0 {
			return &ValidationError{Field: "rules.sequence.start", Message: "must not be negative"}
		}
		if seq.Padding < 0 {
			return &ValidationError{Field: "rules.sequence.padding", Message: "must not be negative"}
		}
	}
	if d := r.Date; d != nil {
		if !metadata.ValidSource(d.Source) {
			return &ValidationError{Field: "rules.date.source", Message: fmt.Sprintf("unknown date source %q (want modify, create, access or exif)", d.Source)}
		}
		switch d.Position {
		case "", types.DatePositionPrefix, types.DatePositionSuffix:
		default:
			return &ValidationError{Field: "rules.date.position", Message: fmt.Sprintf("unknown position %q (want prefix or suffix)", d.Position)}
		}
	}
	return nil
}

// Snapshot is the part of the configuration recorded in run history.
func (c *Config) Snapshot() types.RunConfig {
	return types.RunConfig{
		Source:           c.Source,
		Recursive:        c.Recursive,
		ConflictStrategy: c.ConflictStrategy,
		Rules:            c.Rules,
		Sort:             c.Sort,
		DryRun:           c.DryRun,
	}
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
