// Package waveform decimates a signal into a bounded number of points for
// plotting.
package waveform

import (
	"encoding/json"
	"fmt"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio"
)

// DefaultMaxPoints caps the summary size when no limit is configured
const DefaultMaxPoints = 2000

// Point is one (time, amplitude) pair. It encodes as a two element JSON
// array.
type Point struct {
	Time      float64
	Amplitude float64
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Time, p.Amplitude})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	p.Time, p.Amplitude = pair[0], pair[1]
	return nil
}

// Summary is a decimated waveform spanning [0, Duration]
type Summary struct {
	Points   []Point `json:"points"`
	Duration float64 `json:"duration"`
}

// Stride returns the decimation step for n samples. It starts from
// n/maxPoints and grows until the decimated length fits in maxPoints.
func Stride(n, maxPoints int) int {
	if maxPoints < 1 || n <= maxPoints {
		return 1
	}
	stride := n / maxPoints
	for (n+stride-1)/stride > maxPoints {
		stride++
	}
	return stride
}

// Summarize keeps every Stride-th sample and pairs the result with an
// evenly spaced time axis over the signal duration
func Summarize(signal *audio.Signal, maxPoints int) (*Summary, error) {
	if err := signal.Validate(); err != nil {
		return nil, err
	}
	if maxPoints < 1 {
		return nil, audio.NewAnalysisError(audio.StageWaveform, audio.ErrCodeInvalidConfig,
			fmt.Sprintf("max points must be at least 1, got %d", maxPoints), nil)
	}

	samples := signal.Samples
	stride := Stride(len(samples), maxPoints)
	count := (len(samples) + stride - 1) / stride
	duration := signal.Duration()

	points := make([]Point, count)
	for i := range points {
		points[i].Amplitude = samples[i*stride]
		if count > 1 {
			points[i].Time = duration * float64(i) / float64(count-1)
		}
	}

	return &Summary{Points: points, Duration: duration}, nil
}

// MarshalYAML writes the point as a two element sequence like its JSON form
func (p Point) MarshalYAML() (any, error) {
	return []float64{p.Time, p.Amplitude}, nil
}
