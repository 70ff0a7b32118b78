package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio"
	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/decode"
)

var (
	clickBPM        float64
	clickDuration   float64
	clickSampleRate int
	clickAmplitude  float64
	clickBitDepth   int
)

// clickTrackCmd represents the clicktrack command
var clickTrackCmd = &cobra.Command{
	Use:   "clicktrack [flags] <output.wav>",
	Short: "Write a metronome click track WAV file",
	Long: `Render single-sample clicks at a fixed tempo into a mono WAV file.

Click tracks have a known tempo and known beat positions, which makes them
useful for checking the analyzer end to end.

Examples:
  # Ten seconds at 120 BPM
  bpm-analyzer clicktrack click.wav

  # Thirty seconds at 95 BPM, 44.1kHz
  bpm-analyzer clicktrack --bpm 95 --duration 30 --sample-rate 44100 click95.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runClickTrack,
}

func init() {
	rootCmd.AddCommand(clickTrackCmd)

	clickTrackCmd.Flags().Float64Var(&clickBPM, "bpm", 120, "click tempo in beats per minute")
	clickTrackCmd.Flags().Float64Var(&clickDuration, "duration", 10, "length in seconds")
	clickTrackCmd.Flags().IntVar(&clickSampleRate, "sample-rate", 22050, "sample rate in Hz")
	clickTrackCmd.Flags().Float64Var(&clickAmplitude, "amplitude", 0.9, "click amplitude in (0, 1]")
	clickTrackCmd.Flags().IntVar(&clickBitDepth, "bit-depth", 16, "sample bit depth (8, 16, 24, 32)")
}

func runClickTrack(cmd *cobra.Command, args []string) error {
	if clickBPM <= 0 {
		return fmt.Errorf("bpm must be positive, got %g", clickBPM)
	}
	if clickDuration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", clickDuration)
	}
	if clickAmplitude <= 0 || clickAmplitude > 1 {
		return fmt.Errorf("amplitude must be in (0, 1], got %g", clickAmplitude)
	}

	signal := audio.ClickTrack(clickSampleRate, clickDuration, 60/clickBPM, clickAmplitude)

	outputPath := args[0]
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}

	if err := decode.WriteWAV(file, signal, clickBitDepth); err != nil {
		file.Close()
		os.Remove(outputPath)
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", outputPath, err)
	}

	printSuccess("Wrote %.1fs at %g BPM to %s", signal.Duration(), clickBPM, outputPath)
	return nil
}
