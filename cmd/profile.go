package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/bpm-analyzer/internal/app"
)

// profileCmd groups the analysis profile commands
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Create and check analysis profile files",
	Long: `Analysis profiles override the analysis and decode settings of a run.
Keys a profile leaves out keep their configured value.

Examples:
  # Write a profile holding every default
  bpm-analyzer profile generate profiles/default.yaml

  # Check a profile before using it
  bpm-analyzer profile validate profiles/slow.yaml`,
}

var profileGenerateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Write an example profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.GenerateExampleProfile(args[0]); err != nil {
			return err
		}
		fmt.Printf("✅ Example profile written to: %s\n", args[0])
		return nil
	},
}

var profileValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a profile file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := app.ValidateProfile(args[0])
		if err != nil {
			printResult("Profile", false)
			return err
		}
		printResult("Profile", true)

		printSection("ANALYSIS")
		printKeyValue("Name", profile.Name)
		printKeyValue("BPM Range", fmt.Sprintf("%g - %g", profile.Analysis.MinBPM, profile.Analysis.MaxBPM))
		printKeyValue("Prior", fmt.Sprintf("%g BPM (width %g octaves)", profile.Analysis.PriorBPM, profile.Analysis.PriorWidth))
		printKeyValue("Tightness", fmt.Sprintf("%g", profile.Analysis.Tightness))
		printKeyValue("Decode Format", string(profile.Decode.Format))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileGenerateCmd)
	profileCmd.AddCommand(profileValidateCmd)
}
