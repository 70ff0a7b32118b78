// Package output renders analysis results for people and programs.
package output

import (
	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/tempo"
	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/waveform"
)

// Report is the public shape of one analysis, shared by the CLI and the
// HTTP API
type Report struct {
	BPM          int              `json:"bpm" yaml:"bpm"`
	BeatTimes    []float64        `json:"beat_times" yaml:"beat_times"`
	WaveformData []waveform.Point `json:"waveform_data" yaml:"waveform_data"`
	Duration     float64          `json:"duration" yaml:"duration"`

	Details *ReportDetails `json:"details,omitempty" yaml:"details,omitempty"`
}

// ReportDetails carries diagnostics only included on request
type ReportDetails struct {
	Source          string  `json:"source,omitempty" yaml:"source,omitempty"`
	SampleRate      int     `json:"sample_rate" yaml:"sample_rate"`
	Frames          int     `json:"frames" yaml:"frames"`
	EstimatedBPM    float64 `json:"estimated_bpm" yaml:"estimated_bpm"`
	BeatInterval    float64 `json:"beat_interval_frames" yaml:"beat_interval_frames"`
	TempoConfidence float64 `json:"tempo_confidence" yaml:"tempo_confidence"`
	ElapsedMs       int64   `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// NewReport converts an analysis result. Beat times and waveform data are
// never nil so they encode as empty arrays.
func NewReport(result *tempo.Result, detailed bool) *Report {
	r := &Report{
		BPM:          result.BPM,
		BeatTimes:    result.BeatTimes,
		Duration:     result.Duration,
		WaveformData: []waveform.Point{},
	}
	if r.BeatTimes == nil {
		r.BeatTimes = []float64{}
	}
	if result.Waveform != nil && result.Waveform.Points != nil {
		r.WaveformData = result.Waveform.Points
	}

	if detailed {
		r.Details = &ReportDetails{
			SampleRate:      result.SampleRate,
			Frames:          result.Frames,
			EstimatedBPM:    result.Tempo.BPM,
			BeatInterval:    result.Tempo.Interval,
			TempoConfidence: result.Tempo.Confidence,
			ElapsedMs:       result.Elapsed.Milliseconds(),
		}
	}
	return r
}
