// Package audio holds the types shared by the analysis pipeline: the decoded
// signal and the error taxonomy reported to callers.
package audio

import (
	"fmt"
	"math"
)

// Signal is a decoded mono recording. Samples are nominally in [-1, 1].
type Signal struct {
	Samples    []float64
	SampleRate int
}

// NewSignal wraps samples without copying
func NewSignal(samples []float64, sampleRate int) *Signal {
	return &Signal{Samples: samples, SampleRate: sampleRate}
}

// Len returns the number of samples
func (s *Signal) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Samples)
}

// Duration returns the signal length in seconds
func (s *Signal) Duration() float64 {
	if s == nil || s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Validate rejects signals that cannot be analyzed at all. Quiet signals are
// valid; they produce sentinel results further down the pipeline.
func (s *Signal) Validate() error {
	if s == nil || len(s.Samples) == 0 {
		return NewAnalysisError(StageValidate, ErrCodeInvalidSignal, "signal is empty", nil)
	}
	if s.SampleRate <= 0 {
		return NewAnalysisError(StageValidate, ErrCodeInvalidSignal,
			fmt.Sprintf("sample rate must be positive, got %d", s.SampleRate), nil)
	}
	for i, v := range s.Samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewAnalysisError(StageValidate, ErrCodeInvalidSignal,
				fmt.Sprintf("non-finite sample at index %d", i), nil)
		}
	}
	return nil
}
