package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/On-Jun9/NamePipe/internal/config"
	"github.com/On-Jun9/NamePipe/internal/pipeline"
	"github.com/On-Jun9/NamePipe/pkg/types"
)

// Flags shared by every command that renames files.
var (
	cfgFile        string
	presetName     string
	source         string
	recursive      bool
	includeExt     []string
	conflictPolicy string
	exportPath     string
	exportFormat   string
	logFile        string
	logJSON        bool
	dataDir        string
	dryRun         bool
	noVerify       bool
	hashVerify     bool
)

func addRenameFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&presetName, "preset", "p", "", "load rules from a saved preset")
	cmd.Flags().StringVarP(&source, "source", "s", "", "directory whose files are renamed")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "include files in subdirectories")
	cmd.Flags().StringSliceVarP(&includeExt, "ext", "e", nil, "only rename files with these extensions")
	cmd.Flags().StringVar(&conflictPolicy, "conflict", "", "conflict strategy: rename, skip, overwrite")
	cmd.Flags().StringVar(&exportPath, "export", "", "write the plan to this file before renaming")
	cmd.Flags().StringVar(&exportFormat, "export-format", "", "export format: json, csv, txt, md, html")
	cmd.Flags().StringVar(&logFile, "log-file", "", "log file path")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "output JSON logs")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory for presets and history")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without renaming")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip checking renamed files")
	cmd.Flags().BoolVar(&hashVerify, "hash-verify", false, "compare content hashes after renaming")
}

var runCmd = &cobra.Command{
	Use:   "run [source]",
	Short: "Rename files using the rules of a config file or preset",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}
		return runPipeline(cmd, cfg)
	},
}

func init() {
	addRenameFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

// loadConfig builds the config from the config file, the preset and the
// command line, in that order of precedence.
func loadConfig(args []string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if dataDir != "" {
		if cfg.LogFile == config.DefaultConfig().LogFile {
			cfg.LogFile = filepath.Join(dataDir, "namepipe.log")
		}
		cfg.DataDir = dataDir
	}

	if presetName != "" {
		pm, err := config.NewPresetManager(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		preset, err := pm.LoadPreset(presetName)
		if err != nil {
			return nil, fmt.Errorf("failed to load preset: %w", err)
		}
		config.ApplyPreset(cfg, preset)
	}

	if len(args) > 0 {
		cfg.Source = args[0]
	}
	if source != "" {
		cfg.Source = source
	}
	if recursive {
		cfg.Recursive = true
	}
	if len(includeExt) > 0 {
		cfg.IncludeExtensions = includeExt
	}
	if conflictPolicy != "" {
		cfg.ConflictStrategy = types.ConflictStrategy(conflictPolicy)
	}
	if exportPath != "" {
		cfg.Export.Path = exportPath
	}
	if exportFormat != "" {
		cfg.Export.Format = exportFormat
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if logJSON {
		cfg.LogJSON = true
	}
	if dryRun {
		cfg.DryRun = true
	}
	if noVerify {
		cfg.Verify = false
	}
	if hashVerify {
		cfg.HashVerify = true
	}

	return cfg, nil
}

func runPipeline(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Close()

	if !cfg.DryRun && stdoutIsTerminal() {
		p.SetProgressCallback(newProgressBar().update)
	}

	summary, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}
	return summaryError(summary)
}

func summaryError(summary *types.RunSummary) error {
	if summary.HasErrors() {
		return fmt.Errorf("%d file(s) could not be planned, %d rename(s) failed", summary.PlanErrors, summary.Failed)
	}
	return nil
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressBar turns pipeline updates into a terminal progress bar. The bar
// is created once the plan size is known.
type progressBar struct {
	bar *progressbar.ProgressBar
}

func newProgressBar() *progressBar {
	return &progressBar{}
}

func (b *progressBar) update(u pipeline.ProgressUpdate) {
	switch u.Type {
	case "plan":
		if u.Total > 0 {
			b.bar = progressbar.Default(int64(u.Total), "Renaming")
		}
	case "progress":
		if b.bar != nil {
			b.bar.Describe(u.Filename)
			_ = b.bar.Set(u.Current)
		}
	case "complete", "error":
		if b.bar != nil {
			_ = b.bar.Finish()
			b.bar = nil
		}
	}
}
