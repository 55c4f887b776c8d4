package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/On-Jun9/NamePipe/internal/pipeline"
	"github.com/On-Jun9/NamePipe/internal/report"
)

// applyCmd executes a plan exported earlier with --export-format json,
// without scanning or planning again.
var applyCmd = &cobra.Command{
	Use:   "apply <plan.json>",
	Short: "Execute a previously exported JSON plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := report.Load(args[0])
		if err != nil {
			return err
		}

		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}

		p, err := pipeline.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to create pipeline: %w", err)
		}
		defer p.Close()

		if !cfg.DryRun && stdoutIsTerminal() {
			bar := newProgressBar()
			bar.update(pipeline.ProgressUpdate{Type: "plan", Total: len(plan.Renames)})
			p.SetProgressCallback(bar.update)
		}

		summary, err := p.Execute(cmd.Context(), plan)
		if err != nil {
			return err
		}
		return summaryError(summary)
	},
}

func init() {
	applyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be renamed")
	applyCmd.Flags().StringVar(&conflictPolicy, "conflict", "", "overwrite allows replacing existing files")
	applyCmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip checking renamed files")
	applyCmd.Flags().BoolVar(&hashVerify, "hash-verify", false, "compare content hashes after renaming")
	applyCmd.Flags().StringVar(&logFile, "log-file", "", "log file path")
	applyCmd.Flags().BoolVar(&logJSON, "log-json", false, "output JSON logs")
	applyCmd.Flags().StringVar(&dataDir, "data-dir", "", "directory for presets and history")
	rootCmd.AddCommand(applyCmd)
}
