package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/On-Jun9/NamePipe/internal/config"
)

var presetDescription string

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage saved rule presets",
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the rules of a config file as a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		pm, err := config.NewPresetManager(cfg.DataDir)
		if err != nil {
			return err
		}
		if err := pm.SavePreset(cmd.Context(), config.PresetFromConfig(cfg, args[0], presetDescription)); err != nil {
			return err
		}
		fmt.Printf("Saved preset %q\n", args[0])
		return nil
	},
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pm, err := config.NewPresetManager(dataDir)
		if err != nil {
			return err
		}
		presets, err := pm.ListPresets()
		if err != nil {
			return err
		}
		if len(presets) == 0 {
			fmt.Println("No presets saved")
			return nil
		}

		for _, p := range presets {
			fmt.Printf("%-24s %s  %s\n", p.Name, p.CreatedAt.Format("2006-01-02 15:04"), p.Description)
		}
		return nil
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pm, err := config.NewPresetManager(dataDir)
		if err != nil {
			return err
		}
		if err := pm.DeletePreset(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted preset %q\n", args[0])
		return nil
	},
}

func init() {
	presetSaveCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file whose rules are saved")
	presetSaveCmd.Flags().StringVarP(&presetDescription, "description", "d", "", "preset description")

	presetCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for presets and history")
	presetCmd.AddCommand(presetSaveCmd, presetListCmd, presetDeleteCmd)
	rootCmd.AddCommand(presetCmd)
}
