// Package analyzers slices a signal into overlapping frames and computes a
// short-time magnitude spectrum for each of them.
package analyzers

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio"
	"github.com/RyanBlaney/bpm-analyzer/pkg/logging"
)

const (
	// targetWindowSeconds is the frame duration the default window length
	// approximates at any sample rate
	targetWindowSeconds = 0.0232

	minWindowLength = 8
)

// Spectrum holds magnitudes over WindowLength/2+1 frequency bins
type Spectrum []float64

// FrameAnalyzer computes windowed magnitude spectra of overlapping frames.
// Frame i covers samples [i*hop, i*hop+window); the last frame is zero padded.
type FrameAnalyzer struct {
	windowLength int
	hopLength    int
	windowType   WindowType
	window       []float64
	logger       logging.Logger
}

// DefaultWindowLength returns the power of two closest to ~23 ms at
// sampleRate, measured in samples
func DefaultWindowLength(sampleRate int) int {
	if sampleRate <= 0 {
		return 1024
	}
	target := targetWindowSeconds * float64(sampleRate)
	lower := int(math.Pow(2, math.Floor(math.Log2(target))))
	n := lower
	if target-float64(lower) > float64(2*lower)-target {
		n = 2 * lower
	}
	return max(n, minWindowLength)
}

// DefaultHopLength returns half the window length
func DefaultHopLength(windowLength int) int {
	return max(1, windowLength/2)
}

// FrameCount returns how many frames a signal of n samples produces
func FrameCount(n, windowLength, hopLength int) int {
	if n <= 0 || windowLength <= 0 || hopLength <= 0 {
		return 0
	}
	if n <= windowLength {
		return 1
	}
	return 1 + (n-windowLength+hopLength-1)/hopLength
}

// NewFrameAnalyzer creates a frame analyzer. A nil logger falls back to the
// default logger.
func NewFrameAnalyzer(windowLength, hopLength int, windowType WindowType, logger logging.Logger) (*FrameAnalyzer, error) {
	if windowLength < minWindowLength {
		return nil, audio.NewAnalysisError(audio.StageFrames, audio.ErrCodeInvalidConfig,
			fmt.Sprintf("window length must be at least %d, got %d", minWindowLength, windowLength), nil)
	}
	if hopLength <= 0 || hopLength > windowLength {
		return nil, audio.NewAnalysisError(audio.StageFrames, audio.ErrCodeInvalidConfig,
			fmt.Sprintf("hop length must be in [1, %d], got %d", windowLength, hopLength), nil)
	}
	if windowType == "" {
		windowType = WindowHann
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return &FrameAnalyzer{
		windowLength: windowLength,
		hopLength:    hopLength,
		windowType:   windowType,
		window:       windowType.Coefficients(windowLength),
		logger: logger.WithFields(logging.Fields{
			"component":     "frame_analyzer",
			"window_length": windowLength,
			"hop_length":    hopLength,
		}),
	}, nil
}

func (fa *FrameAnalyzer) WindowLength() int { return fa.windowLength }
func (fa *FrameAnalyzer) HopLength() int    { return fa.hopLength }
func (fa *FrameAnalyzer) NumBins() int      { return fa.windowLength/2 + 1 }

// Frames returns a lazy iterator over the spectra of samples
func (fa *FrameAnalyzer) Frames(samples []float64) (*FrameIterator, error) {
	if len(samples) == 0 {
		return nil, audio.NewAnalysisError(audio.StageFrames, audio.ErrCodeInvalidSignal,
			"signal shorter than one analysis frame", nil)
	}
	return &FrameIterator{
		fa:      fa,
		samples: samples,
		total:   FrameCount(len(samples), fa.windowLength, fa.hopLength),
		buf:     make([]float64, fa.windowLength),
	}, nil
}

// Compute materialises every spectrum, spreading frames over at most
// workers goroutines. The result is identical to draining Frames.
func (fa *FrameAnalyzer) Compute(ctx context.Context, samples []float64, workers int) ([]Spectrum, error) {
	if len(samples) == 0 {
		return nil, audio.NewAnalysisError(audio.StageFrames, audio.ErrCodeInvalidSignal,
			"signal shorter than one analysis frame", nil)
	}

	total := FrameCount(len(samples), fa.windowLength, fa.hopLength)
	out := make([]Spectrum, total)

	if workers < 1 {
		workers = 1
	}
	chunk := (total + workers - 1) / workers

	logger := fa.logger.WithFields(logging.Fields{
		"function": "Compute",
		"frames":   total,
		"workers":  workers,
	})
	logger.Debug("Computing frame spectra")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < total; start += chunk {
		start := start
		end := min(start+chunk, total)
		g.Go(func() error {
			buf := make([]float64, fa.windowLength)
			for i := start; i < end; i++ {
				if (i-start)%256 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				out[i] = fa.spectrum(samples, i, buf)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, audio.NewAnalysisError(audio.StageFrames, audio.ErrCodeCancelled,
			"spectrum computation interrupted", err)
	}

	logger.Debug("Frame spectra computed")
	return out, nil
}

// spectrum windows frame i of samples into buf and returns its magnitudes
func (fa *FrameAnalyzer) spectrum(samples []float64, i int, buf []float64) Spectrum {
	start := i * fa.hopLength
	for j := range buf {
		k := start + j
		if k < len(samples) {
			buf[j] = samples[k] * fa.window[j]
		} else {
			buf[j] = 0
		}
	}

	coeffs := fft.FFTReal(buf)
	mags := make(Spectrum, fa.NumBins())
	for k := range mags {
		mags[k] = cmplx.Abs(coeffs[k])
	}
	return mags
}

// FrameIterator walks the spectra of a signal one frame at a time
type FrameIterator struct {
	fa      *FrameAnalyzer
	samples []float64
	next    int
	total   int
	buf     []float64
}

// Next returns the next spectrum, or false once every frame was produced
func (it *FrameIterator) Next() (Spectrum, bool) {
	if it.next >= it.total {
		return nil, false
	}
	s := it.fa.spectrum(it.samples, it.next, it.buf)
	it.next++
	return s, true
}

// Len returns the total number of frames
func (it *FrameIterator) Len() int { return it.total }

// Reset rewinds the iterator to the first frame
func (it *FrameIterator) Reset() { it.next = 0 }
