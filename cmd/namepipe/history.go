package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/On-Jun9/NamePipe/internal/config"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent rename runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := config.NewHistoryManager(dataDir)
		if err != nil {
			return err
		}
		entries, err := m.Recent(historyLimit)
		if err != nil {
			return err
		}

		if historyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		if len(entries) == 0 {
			fmt.Println("No runs recorded")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-8s renamed %-5d failed %-5d %s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"), e.Status, e.Summary.Renamed, e.Summary.Failed, e.Config.Source)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print entries as JSON")
	historyCmd.Flags().StringVar(&dataDir, "data-dir", "", "directory for presets and history")
	rootCmd.AddCommand(historyCmd)
}
