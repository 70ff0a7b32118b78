package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/bpm-analyzer/internal/app"
)

var (
	// Analyze command flags
	analyzeProfile    string
	analyzePreset     string
	analyzeFormat     string
	analyzeSampleRate int
	analyzeChannels   int
	analyzeWorkers    int
	analyzeOutputFile string
	analyzeDetailed   bool
	analyzeTimeout    time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <audio-file>",
	Short: "Estimate the tempo and beats of an audio file",
	Long: `Decode an audio file and estimate its tempo, beat positions and waveform.

WAV files are detected from their header. Raw PCM needs --format and, when
it differs from the configured default, --sample-rate and --channels.

Examples:
  # Analyze a WAV file and print a table
  bpm-analyzer analyze song.wav

  # JSON report with diagnostics
  bpm-analyzer analyze -o json --detailed song.wav

  # Raw 16-bit stereo PCM at 44.1kHz
  bpm-analyzer analyze --format s16le --sample-rate 44100 --channels 2 capture.raw

  # Fine-grained framing written to a file
  bpm-analyzer analyze --preset precise --output-file out/report.yaml -o yaml song.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeProfile, "profile", "p", "",
		"analysis profile file (YAML or JSON)")
	analyzeCmd.Flags().StringVar(&analyzePreset, "preset", "",
		"analysis preset (default, fast, precise)")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "",
		"input format (auto, wav, s16le, s32le, f32le, u8)")
	analyzeCmd.Flags().IntVar(&analyzeSampleRate, "sample-rate", 0,
		"sample rate of raw PCM input")
	analyzeCmd.Flags().IntVar(&analyzeChannels, "channels", 0,
		"channel count of raw PCM input")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0,
		"goroutines used for the frame transforms")
	analyzeCmd.Flags().StringVar(&analyzeOutputFile, "output-file", "",
		"write the report to this file instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeDetailed, "detailed", false,
		"include analysis diagnostics in the report")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 0,
		"abort the analysis after this long (0 disables)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	timer := NewPerformanceTimer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timer.StartEvent("setup")
	application, err := app.NewApp(&app.Context{
		ProfileFile: analyzeProfile,
		Preset:      analyzePreset,
		InputFile:   args[0],
		InputFormat: analyzeFormat,
		SampleRate:  analyzeSampleRate,
		Channels:    analyzeChannels,
		Workers:     analyzeWorkers,
		OutputFile:  analyzeOutputFile,
		Timeout:     analyzeTimeout,
		Detailed:    analyzeDetailed,
	})
	if err != nil {
		return err
	}
	timer.EndEvent("setup")

	// progress shares stdout with the report, so only show it for tables or
	// when the report goes to a file
	cfg := application.Config()
	progress := cfg.Verbose && (analyzeOutputFile != "" || cfg.OutputFormat == "table")

	if progress {
		printHeader("BPM Analysis", args[0])
		printStep(1, "Analyzing audio")
	}

	timer.StartEvent("analysis")
	report, err := application.Analyze(ctx)
	if err != nil {
		if progress {
			printError("%v", err)
		}
		return err
	}
	timer.EndEvent("analysis")

	if progress {
		if report.BPM > 0 {
			printSuccess("Tempo %d BPM with %d beats", report.BPM, len(report.BeatTimes))
		} else {
			printWarning("No tempo detected")
		}
		printInfo("Duration %.2fs, %d waveform points", report.Duration, len(report.WaveformData))
		printStep(2, "Writing report")
		fmt.Println()
	}

	if err := application.WriteReport(report); err != nil {
		return err
	}

	if progress {
		if analyzeOutputFile != "" {
			printSuccess("Report written to %s", analyzeOutputFile)
		}
		printSection("Timing")
		for _, event := range []string{"setup", "analysis"} {
			printKeyValue(titleCase(event), timer.GetDuration(event).Round(time.Millisecond).String())
		}
		printKeyValue("Total", timer.GetTotalDuration().Round(time.Millisecond).String())
	}

	return nil
}
