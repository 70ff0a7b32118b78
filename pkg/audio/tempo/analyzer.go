// Package tempo estimates the tempo and beat positions of a decoded signal:
// spectral-flux onset detection, autocorrelation tempo estimation and
// dynamic-programming beat tracking.
package tempo

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio"
	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/analyzers"
	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/waveform"
	"github.com/RyanBlaney/bpm-analyzer/pkg/logging"
)

// Result is the outcome of analyzing one signal
type Result struct {
	BPM       int               `json:"bpm"`
	BeatTimes []float64         `json:"beat_times"`
	Waveform  *waveform.Summary `json:"waveform"`
	Duration  float64           `json:"duration"`

	Tempo      TempoEstimate `json:"tempo"`
	Beats      BeatSequence  `json:"beats"`
	SampleRate int           `json:"sample_rate"`
	Frames     int           `json:"frames"`
	Elapsed    time.Duration `json:"elapsed"`
}

// TempoDetected distinguishes "analyzed, found nothing" from a real tempo
func (r *Result) TempoDetected() bool {
	return r != nil && r.BPM > 0
}

// Analyzer runs the full pipeline. It holds no per-signal state and is safe
// for concurrent use.
type Analyzer struct {
	config Config
	logger logging.Logger
}

// NewAnalyzer validates cfg and returns an analyzer
func NewAnalyzer(cfg Config, logger logging.Logger) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Analyzer{
		config: cfg,
		logger: logger.WithFields(logging.Fields{
			"component": "tempo_analyzer",
		}),
	}, nil
}

// Config returns the analyzer configuration
func (a *Analyzer) Config() Config {
	return a.config
}

// Analyze estimates tempo and beats of signal and summarizes its waveform.
// Invalid signals fail as a whole; silent ones yield a zero BPM and no beats.
func (a *Analyzer) Analyze(ctx context.Context, signal *audio.Signal) (*Result, error) {
	start := time.Now()

	if err := signal.Validate(); err != nil {
		a.logger.Error(err, "Rejected signal")
		return nil, err
	}

	cfg := a.config.Resolve(signal.SampleRate)
	logger := a.logger.WithFields(logging.Fields{
		"function":      "Analyze",
		"samples":       signal.Len(),
		"sample_rate":   signal.SampleRate,
		"window_length": cfg.WindowLength,
		"hop_length":    cfg.HopLength,
	})
	logger.Debug("Starting analysis")

	windowType, err := analyzers.ParseWindowType(cfg.WindowFunction)
	if err != nil {
		return nil, audio.NewAnalysisError(audio.StageFrames, audio.ErrCodeInvalidConfig, "bad window function", err)
	}
	frameAnalyzer, err := analyzers.NewFrameAnalyzer(cfg.WindowLength, cfg.HopLength, windowType, a.logger)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Duration:   signal.Duration(),
		SampleRate: signal.SampleRate,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := waveform.Summarize(signal, cfg.MaxWaveformPoints)
		if err != nil {
			return err
		}
		result.Waveform = summary
		return nil
	})

	g.Go(func() error {
		spectra, err := frameAnalyzer.Compute(gctx, signal.Samples, cfg.Workers)
		if err != nil {
			return err
		}
		if err := checkCancelled(gctx, audio.StageOnset); err != nil {
			return err
		}

		envelope := NewOnsetEnvelopeBuilder(cfg.HopLength, signal.SampleRate, cfg, a.logger).Build(spectra)
		if err := checkCancelled(gctx, audio.StageTempo); err != nil {
			return err
		}

		estimate := NewTempoEstimator(cfg, a.logger).Estimate(envelope)
		if err := checkCancelled(gctx, audio.StageBeats); err != nil {
			return err
		}

		beats := NewBeatTracker(cfg, a.logger).Track(envelope, estimate)

		result.Frames = envelope.Len()
		result.Tempo = estimate
		result.Beats = beats
		result.BeatTimes = beats.Times()
		result.BPM = reportedBPM(estimate, cfg)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(err, "Analysis failed")
		return nil, err
	}

	result.Elapsed = time.Since(start)
	logger.Info("Analysis completed", logging.Fields{
		"bpm":        result.BPM,
		"beats":      len(result.BeatTimes),
		"duration":   result.Duration,
		"elapsed_ms": result.Elapsed.Milliseconds(),
	})
	return result, nil
}

// reportedBPM rounds the estimate while keeping it inside the configured range
func reportedBPM(est TempoEstimate, cfg Config) int {
	if !est.Detected() {
		return 0
	}
	bpm := int(math.Round(est.BPM))
	lo, hi := int(math.Ceil(cfg.MinBPM)), int(math.Floor(cfg.MaxBPM))
	if lo <= hi {
		bpm = min(max(bpm, lo), hi)
	}
	return bpm
}

func checkCancelled(ctx context.Context, stage audio.Stage) error {
	if err := ctx.Err(); err != nil {
		return audio.NewAnalysisError(stage, audio.ErrCodeCancelled, "analysis interrupted", err)
	}
	return nil
}
