package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/bpm-analyzer/configs"
)

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Test and display all configuration values",
	Long: `Test configuration loading and display all values to verify proper parsing.

This command loads the configuration and displays all values in a structured format
to help verify that your YAML configuration is being parsed correctly.

Examples:
  # Test with default config file
  bpm-analyzer config-test

  # Test with specific config file
  bpm-analyzer --config /path/to/config.yaml config-test`,
	RunE: runConfigTest,
}

func init() {
	rootCmd.AddCommand(configTestCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	fmt.Println("BPM ANALYZER CONFIGURATION TEST")
	fmt.Println(strings.Repeat("=", 80))

	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printSection("APPLICATION SETTINGS")
	printKeyValue("Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue("Output Format", config.OutputFormat)

	printSection("ANALYSIS CONFIGURATION")
	a := config.Analysis
	printSubsection("Framing")
	printKeyValue("  Window Length", lengthOrAuto(a.WindowLength))
	printKeyValue("  Hop Length", lengthOrAuto(a.HopLength))
	printKeyValue("  Window Function", a.WindowFunction)
	printKeyValue("  Workers", fmt.Sprintf("%d", a.Workers))

	printSubsection("Onset Envelope")
	printKeyValue("  High Frequency Emphasis", fmt.Sprintf("%.2f", a.HighFreqEmphasis))
	printKeyValue("  Log Compression", fmt.Sprintf("%.2f", a.LogCompression))
	printKeyValue("  Normalization Window", fmt.Sprintf("%.2fs", a.NormalizationSeconds))

	printSubsection("Tempo")
	printKeyValue("  BPM Range", fmt.Sprintf("%g - %g", a.MinBPM, a.MaxBPM))
	printKeyValue("  Prior BPM", fmt.Sprintf("%g", a.PriorBPM))
	printKeyValue("  Prior Width", fmt.Sprintf("%g octaves", a.PriorWidth))

	printSubsection("Beats")
	printKeyValue("  Tightness", fmt.Sprintf("%g", a.Tightness))
	printKeyValue("  Max Waveform Points", fmt.Sprintf("%d", a.MaxWaveformPoints))

	printSection("DECODE CONFIGURATION")
	printKeyValue("Format", string(config.Decode.Format))
	printKeyValue("Raw Sample Rate", fmt.Sprintf("%d Hz", config.Decode.SampleRate))
	printKeyValue("Raw Channels", fmt.Sprintf("%d", config.Decode.Channels))

	printSection("SERVER CONFIGURATION")
	printKeyValue("Address", config.Server.Address)
	printKeyValue("Read Timeout", config.Server.ReadTimeout.String())
	printKeyValue("Write Timeout", config.Server.WriteTimeout.String())
	printKeyValue("Shutdown Timeout", config.Server.ShutdownTimeout.String())
	printKeyValue("Max Upload", fmt.Sprintf("%d MB", config.Server.MaxUploadMB))
	printKeyValue("Allowed Origins", fmt.Sprintf("(%d) %v", len(config.Server.AllowedOrigins), config.Server.AllowedOrigins))
	uploadDir := config.Server.UploadDir
	if uploadDir == "" {
		uploadDir = "(system temp)"
	}
	printKeyValue("Upload Directory", uploadDir)

	printSection("LOG CONFIGURATION")
	printKeyValue("Level", config.Log.Level)
	printKeyValue("Format", config.Log.Format)
	if config.Log.File != "" {
		printKeyValue("File", config.Log.File)
		printKeyValue("  Max Size", fmt.Sprintf("%d MB", config.Log.MaxSizeMB))
		printKeyValue("  Max Backups", fmt.Sprintf("%d", config.Log.MaxBackups))
		printKeyValue("  Max Age", fmt.Sprintf("%d days", config.Log.MaxAgeDays))
		printKeyValue("  Compress", fmt.Sprintf("%t", config.Log.Compress))
	} else {
		printKeyValue("File", "(stderr)")
	}

	if err := configs.ValidateConfig(config); err != nil {
		fmt.Println()
		fmt.Println(ColorRed + strings.Repeat("-", 80))
		fmt.Printf("CONFIGURATION INVALID: %v\n", err)
		fmt.Println(strings.Repeat("=", 80) + ColorReset)
		return err
	}

	fmt.Println()
	fmt.Println(ColorGreen + strings.Repeat("-", 80))
	fmt.Println("CONFIGURATION TEST COMPLETED SUCCESSFULLY")
	fmt.Printf("Config file: %s\n", getConfigFilePath())
	fmt.Println(strings.Repeat("=", 80) + ColorReset)

	return nil
}

func lengthOrAuto(n int) string {
	if n == 0 {
		return "auto (from sample rate)"
	}
	return fmt.Sprintf("%d samples", n)
}
