package main

import (
	"github.com/spf13/cobra"

	"github.com/On-Jun9/NamePipe/internal/metadata"
	"github.com/On-Jun9/NamePipe/pkg/types"
)

// Flags of the single-rule commands.
var (
	seqStart     int
	seqPadding   int
	seqTemplate  string
	dateSource   string
	dateFormat   string
	datePosition string
	dateSep      string
	sortBy       string
	sortOrder    string
)

// ruleCommand builds a command that replaces the configured rules with the
// single rule returned by build.
func ruleCommand(use, short string, args cobra.PositionalArgs, build func(args []string) types.RuleSpec) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}
			cfg.Rules = build(args)
			return runPipeline(cmd, cfg)
		},
	}
	addRenameFlags(cmd)
	return cmd
}

var replaceCmd = ruleCommand("replace <from> <to>", "Replace every occurrence of a substring", cobra.ExactArgs(2),
	func(args []string) types.RuleSpec {
		return types.RuleSpec{Replace: []types.Replacement{{From: args[0], To: args[1]}}}
	})

var regexCmd = ruleCommand("regex <pattern> <replacement>", "Replace regular expression matches ($1 refers to a group)", cobra.ExactArgs(2),
	func(args []string) types.RuleSpec {
		return types.RuleSpec{Regex: []types.RegexReplacement{{Pattern: args[0], Replacement: args[1]}}}
	})

var prefixCmd = ruleCommand("prefix <text>", "Add text before the base name", cobra.ExactArgs(1),
	func(args []string) types.RuleSpec {
		return types.RuleSpec{Prefix: args[0]}
	})

var suffixCmd = ruleCommand("suffix <text>", "Add text after the base name, before the extension", cobra.ExactArgs(1),
	func(args []string) types.RuleSpec {
		return types.RuleSpec{Suffix: args[0]}
	})

var sequenceCmd = ruleCommand("sequence", "Number files in scan order", cobra.NoArgs,
	func(args []string) types.RuleSpec {
		return types.RuleSpec{Sequence: sequenceRule()}
	})

var caseCmd = ruleCommand("case <upper|lower|title>", "Change the case of the whole name", cobra.ExactArgs(1),
	func(args []string) types.RuleSpec {
		return types.RuleSpec{Case: types.CaseMode(args[0])}
	})

var dateCmd = ruleCommand("date", "Add a file date to the name", cobra.NoArgs,
	func(args []string) types.RuleSpec {
		return types.RuleSpec{Date: &types.DateRule{
			Source:    types.DateSource(dateSource),
			Format:    dateFormat,
			Position:  types.DatePosition(datePosition),
			Separator: dateSep,
		}}
	})

// sortCmd orders the files and then numbers them in that order.
var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Sort files by name, date or size and renumber them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		cfg.Sort = types.SortSpec{
			By:         types.SortKey(sortBy),
			Order:      types.SortOrder(sortOrder),
			DateSource: types.DateSource(dateSource),
		}
		cfg.Rules = types.RuleSpec{Sequence: sequenceRule()}
		return runPipeline(cmd, cfg)
	},
}

func sequenceRule() *types.SequenceRule {
	return &types.SequenceRule{Start: seqStart, Padding: seqPadding, Template: seqTemplate}
}

func addSequenceFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&seqStart, "start", 1, "first sequence number")
	cmd.Flags().IntVar(&seqPadding, "padding", 3, "zero-pad numbers to this width")
	cmd.Flags().StringVar(&seqTemplate, "template", "", "name template using {n} and {name} (default {n}_{name})")
}

func init() {
	addSequenceFlags(sequenceCmd)

	dateCmd.Flags().StringVar(&dateSource, "date-source", string(types.DateSourceModify), "timestamp: modify, create, access, exif")
	dateCmd.Flags().StringVar(&dateFormat, "format", metadata.DefaultDateFormat, "date format using YYYY, MM, DD, HH, mm, ss")
	dateCmd.Flags().StringVar(&datePosition, "position", string(types.DatePositionPrefix), "prefix or suffix")
	dateCmd.Flags().StringVar(&dateSep, "separator", metadata.DefaultSeparator, "text between the date and the name")

	addSequenceFlags(sortCmd)
	sortCmd.Flags().StringVar(&sortBy, "by", string(types.SortByName), "sort key: name, date, size")
	sortCmd.Flags().StringVar(&sortOrder, "order", string(types.SortAsc), "asc or desc")
	sortCmd.Flags().StringVar(&dateSource, "date-source", string(types.DateSourceModify), "timestamp used by --by date")

	for _, cmd := range []*cobra.Command{replaceCmd, regexCmd, prefixCmd, suffixCmd, sequenceCmd, caseCmd, dateCmd, sortCmd} {
		rootCmd.AddCommand(cmd)
	}
}
