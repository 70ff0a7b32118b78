package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RyanBlaney/bpm-analyzer/configs"
	"github.com/RyanBlaney/bpm-analyzer/internal/server"
	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/decode"
	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/tempo"
	"github.com/RyanBlaney/bpm-analyzer/pkg/logging"
	"github.com/RyanBlaney/bpm-analyzer/pkg/output"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ProfileFile  string // Analysis profile file (optional)
	Preset       string
	InputFile    string
	InputFormat  string
	SampleRate   int
	Channels     int
	Workers      int
	OutputFile   string
	OutputFormat string
	Timeout      time.Duration
	Verbose      bool
	Detailed     bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// App handles the analyzer application lifecycle
type App struct {
	ctx      *Context
	config   *configs.Config
	logger   logging.Logger
	analyzer *tempo.Analyzer
	decoder  *decode.Decoder
}

// NewApp loads and validates configuration, sets up logging and builds the
// analysis components
func NewApp(ctx *Context) (*App, error) {
	// Load configuration
	config, err := loadAndMergeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = config

	// Set up logging
	logger, err := setupLogging(config)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	ctx.Logger = logger

	analyzer, err := tempo.NewAnalyzer(config.Analysis, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	logger.Debug("Application initialized", logging.Fields{
		"profile_file":  ctx.ProfileFile,
		"preset":        ctx.Preset,
		"output_format": config.OutputFormat,
		"min_bpm":       config.Analysis.MinBPM,
		"max_bpm":       config.Analysis.MaxBPM,
	})

	return &App{
		ctx:      ctx,
		config:   config,
		logger:   logger,
		analyzer: analyzer,
		decoder:  decode.NewDecoder(logger),
	}, nil
}

// Config returns the merged configuration
func (app *App) Config() *configs.Config {
	return app.config
}

// Analyze decodes the input file and analyzes it
func (app *App) Analyze(ctx context.Context) (*output.Report, error) {
	if app.ctx.InputFile == "" {
		return nil, fmt.Errorf("no input file given")
	}

	if app.ctx.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.ctx.Timeout)
		defer cancel()
	}

	signal, err := app.decoder.DecodeFile(app.ctx.InputFile, app.config.Decode)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", app.ctx.InputFile, err)
	}

	result, err := app.analyzer.Analyze(ctx, signal)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(result, app.ctx.Detailed || app.config.Verbose)
	if report.Details != nil {
		report.Details.Source = app.ctx.InputFile
	}
	return report, nil
}

// Run analyzes the input file and writes the formatted report
func (app *App) Run(ctx context.Context) error {
	report, err := app.Analyze(ctx)
	if err != nil {
		return err
	}
	return app.WriteReport(report)
}

// Serve runs the HTTP API until ctx is cancelled
func (app *App) Serve(ctx context.Context) error {
	srv := server.NewServer(app.config.Server, app.analyzer, app.decoder, app.config.Decode, app.logger)
	return srv.Run(ctx)
}

// setupLogging configures the root logger from the log section
func setupLogging(config *configs.Config) (logging.Logger, error) {
	if err := logging.Configure(config.Log.ToLogging()); err != nil {
		return nil, err
	}
	if config.Verbose {
		logging.SetLevel(logging.DebugLevel)
	}
	return logging.NewDefaultLogger(), nil
}

// loadAndMergeConfig loads the base configuration and merges the profile
// and CLI flags into it
func loadAndMergeConfig(ctx *Context) (*configs.Config, error) {
	// Load base configuration
	baseConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load base configuration: %w", err)
	}

	merged, err := mergeConfig(baseConfig, ctx)
	if err != nil {
		return nil, err
	}

	// Validate final configuration
	if err := configs.ValidateConfig(merged); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return merged, nil
}

// WriteReport formats the report and writes it to the output file or stdout
func (app *App) WriteReport(report *output.Report) error {
	formatter, err := output.NewFormatter(app.config.OutputFormat)
	if err != nil {
		return err
	}

	formattedData, err := formatter.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format output data: %w", err)
	}

	// Write to file or stdout
	if app.ctx.OutputFile != "" {
		return app.writeToFile(formattedData)
	}

	_, err = os.Stdout.Write(formattedData)
	return err
}

// writeToFile writes data to the specified output file
func (app *App) writeToFile(data []byte) error {
	// Ensure directory exists
	dir := filepath.Dir(app.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if err := os.WriteFile(app.ctx.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	app.logger.Debug("Results written to file", logging.Fields{
		"output_file": app.ctx.OutputFile,
		"size_bytes":  len(data),
	})

	return nil
}
