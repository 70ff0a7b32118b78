package tempo

import (
	"fmt"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio"
	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/analyzers"
)

// Config holds every tunable of one analysis run. Zero window and hop
// lengths are derived from the signal's sample rate.
type Config struct {
	// Framing
	WindowLength   int    `json:"window_length" yaml:"window_length" mapstructure:"window_length"`
	HopLength      int    `json:"hop_length" yaml:"hop_length" mapstructure:"hop_length"`
	WindowFunction string `json:"window_function" yaml:"window_function" mapstructure:"window_function"`

	// Onset envelope
	HighFreqEmphasis     float64 `json:"high_freq_emphasis" yaml:"high_freq_emphasis" mapstructure:"high_freq_emphasis"`
	LogCompression       float64 `json:"log_compression" yaml:"log_compression" mapstructure:"log_compression"`
	NormalizationSeconds float64 `json:"normalization_seconds" yaml:"normalization_seconds" mapstructure:"normalization_seconds"`

	// Tempo search
	MinBPM     float64 `json:"min_bpm" yaml:"min_bpm" mapstructure:"min_bpm"`
	MaxBPM     float64 `json:"max_bpm" yaml:"max_bpm" mapstructure:"max_bpm"`
	PriorBPM   float64 `json:"prior_bpm" yaml:"prior_bpm" mapstructure:"prior_bpm"`
	PriorWidth float64 `json:"prior_width" yaml:"prior_width" mapstructure:"prior_width"` // octaves

	// Beat tracking
	Tightness float64 `json:"tightness" yaml:"tightness" mapstructure:"tightness"`

	// Visualization
	MaxWaveformPoints int `json:"max_waveform_points" yaml:"max_waveform_points" mapstructure:"max_waveform_points"`

	// Workers bounds the goroutines used for the frame transforms
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// DefaultConfig returns the documented defaults
func DefaultConfig() Config {
	return Config{
		WindowFunction:       string(analyzers.WindowHann),
		HighFreqEmphasis:     1.0,
		LogCompression:       100.0,
		NormalizationSeconds: 1.0,
		MinBPM:               50,
		MaxBPM:               220,
		PriorBPM:             120,
		PriorWidth:           1.0,
		Tightness:            100,
		MaxWaveformPoints:    2000,
		Workers:              4,
	}
}

// Validate checks the configuration independently of any signal
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return audio.NewAnalysisError(audio.StageValidate, audio.ErrCodeInvalidConfig, fmt.Sprintf(format, args...), nil)
	}

	if c.WindowLength < 0 || c.HopLength < 0 {
		return invalid("window and hop lengths cannot be negative")
	}
	if c.WindowLength > 0 && c.HopLength > c.WindowLength {
		return invalid("hop length %d exceeds window length %d", c.HopLength, c.WindowLength)
	}
	if _, err := analyzers.ParseWindowType(c.WindowFunction); err != nil {
		return invalid("%v", err)
	}
	if c.MinBPM <= 0 || c.MaxBPM <= c.MinBPM {
		return invalid("bpm range [%g, %g] is invalid", c.MinBPM, c.MaxBPM)
	}
	if c.PriorBPM <= 0 {
		return invalid("prior bpm must be positive")
	}
	if c.PriorWidth <= 0 {
		return invalid("prior width must be positive")
	}
	if c.Tightness < 0 {
		return invalid("tightness cannot be negative")
	}
	if c.HighFreqEmphasis < 0 || c.LogCompression < 0 || c.NormalizationSeconds < 0 {
		return invalid("onset parameters cannot be negative")
	}
	if c.MaxWaveformPoints < 1 {
		return invalid("max waveform points must be at least 1")
	}
	return nil
}

// Resolve fills in the sample-rate dependent framing defaults
func (c Config) Resolve(sampleRate int) Config {
	if c.WindowLength == 0 {
		c.WindowLength = analyzers.DefaultWindowLength(sampleRate)
	}
	if c.HopLength == 0 {
		c.HopLength = analyzers.DefaultHopLength(c.WindowLength)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return c
}
