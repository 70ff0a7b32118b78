package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/bpm-analyzer/internal/app"
)

var (
	servePreset  string
	serveProfile string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the BPM prediction HTTP API",
	Long: `Serve the prediction API.

Endpoints:
  GET  /             welcome message
  GET  /healthz      liveness probe
  POST /api/predict  multipart upload with a "file" field, returns bpm,
                     beat_times, waveform_data and duration

Examples:
  # Listen on the configured address (default :8000)
  bpm-analyzer serve

  # Custom address and upload limit
  bpm-analyzer serve --address 127.0.0.1:9000 --max-upload-mb 16`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("address", "", "listen address")
	serveCmd.Flags().Int64("max-upload-mb", 0, "largest accepted upload in megabytes")
	serveCmd.Flags().String("upload-dir", "", "directory for temporary uploads")
	serveCmd.Flags().StringSlice("allowed-origins", nil, "CORS origins allowed to call the API")
	serveCmd.Flags().StringVar(&servePreset, "preset", "", "analysis preset (default, fast, precise)")
	serveCmd.Flags().StringVarP(&serveProfile, "profile", "p", "", "analysis profile file (YAML or JSON)")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
	viper.BindPFlag("server.max_upload_mb", serveCmd.Flags().Lookup("max-upload-mb"))
	viper.BindPFlag("server.upload_dir", serveCmd.Flags().Lookup("upload-dir"))
	viper.BindPFlag("server.allowed_origins", serveCmd.Flags().Lookup("allowed-origins"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(&app.Context{
		Preset:      servePreset,
		ProfileFile: serveProfile,
	})
	if err != nil {
		return err
	}

	return application.Serve(ctx)
}
