package tempo

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/analyzers"
	"github.com/RyanBlaney/bpm-analyzer/pkg/logging"
)

// silenceFloor is the raw flux peak below which an envelope counts as silent
const silenceFloor = 1e-6

// OnsetEnvelope is a non-negative onset strength per analysis frame
type OnsetEnvelope struct {
	Values     []float64 `json:"values"`
	HopLength  int       `json:"hop_length"`
	SampleRate int       `json:"sample_rate"`
}

// Len returns the number of frames
func (e *OnsetEnvelope) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Values)
}

// FrameDuration returns the time between consecutive frames in seconds
func (e *OnsetEnvelope) FrameDuration() float64 {
	if e == nil || e.SampleRate <= 0 {
		return 0
	}
	return float64(e.HopLength) / float64(e.SampleRate)
}

// FrameTime converts a frame index to seconds
func (e *OnsetEnvelope) FrameTime(frame int) float64 {
	return float64(frame) * e.FrameDuration()
}

// IsSilent reports whether the envelope carries no onset energy at all
func (e *OnsetEnvelope) IsSilent() bool {
	for _, v := range e.Values {
		if v > 0 {
			return false
		}
	}
	return true
}

// OnsetEnvelopeBuilder turns successive spectra into a spectral-flux
// onset strength envelope
type OnsetEnvelopeBuilder struct {
	hopLength   int
	sampleRate  int
	emphasis    float64
	compression float64
	normFrames  int
	logger      logging.Logger
}

// NewOnsetEnvelopeBuilder creates a builder for spectra taken every
// hopLength samples at sampleRate
func NewOnsetEnvelopeBuilder(hopLength, sampleRate int, cfg Config, logger logging.Logger) *OnsetEnvelopeBuilder {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	normFrames := 0
	if hopLength > 0 && sampleRate > 0 {
		normFrames = int(math.Round(cfg.NormalizationSeconds * float64(sampleRate) / float64(hopLength)))
	}

	return &OnsetEnvelopeBuilder{
		hopLength:   hopLength,
		sampleRate:  sampleRate,
		emphasis:    cfg.HighFreqEmphasis,
		compression: cfg.LogCompression,
		normFrames:  normFrames,
		logger: logger.WithFields(logging.Fields{
			"component": "onset_envelope_builder",
		}),
	}
}

// Build computes the envelope of a fully materialised spectrum sequence
func (b *OnsetEnvelopeBuilder) Build(spectra []analyzers.Spectrum) *OnsetEnvelope {
	flux := newFluxAccumulator(b)
	for _, s := range spectra {
		flux.add(s)
	}
	return b.finish(flux.values)
}

// BuildFromIterator drains it in frame order and computes the envelope
// without holding more than two spectra at a time
func (b *OnsetEnvelopeBuilder) BuildFromIterator(it *analyzers.FrameIterator) *OnsetEnvelope {
	flux := newFluxAccumulator(b)
	it.Reset()
	for s, ok := it.Next(); ok; s, ok = it.Next() {
		flux.add(s)
	}
	return b.finish(flux.values)
}

func (b *OnsetEnvelopeBuilder) finish(values []float64) *OnsetEnvelope {
	env := &OnsetEnvelope{
		Values:     values,
		HopLength:  b.hopLength,
		SampleRate: b.sampleRate,
	}

	if len(values) < 2 {
		for i := range values {
			values[i] = 0
		}
		return env
	}

	b.normalize(values)

	b.logger.Debug("Onset envelope built", logging.Fields{
		"frames":      len(values),
		"norm_frames": b.normFrames,
	})
	return env
}

// normalize removes the local mean, half-wave rectifies and scales the
// envelope to a peak of 1 so loud and quiet recordings compare equally
func (b *OnsetEnvelopeBuilder) normalize(values []float64) {
	if floats.Max(values) < silenceFloor {
		for i := range values {
			values[i] = 0
		}
		return
	}

	if b.normFrames > 1 {
		prefix := make([]float64, len(values)+1)
		for i, v := range values {
			prefix[i+1] = prefix[i] + v
		}
		half := b.normFrames / 2
		local := make([]float64, len(values))
		for i := range values {
			lo := max(0, i-half)
			hi := min(len(values), i+half+1)
			local[i] = (prefix[hi] - prefix[lo]) / float64(hi-lo)
		}
		for i := range values {
			values[i] = math.Max(0, values[i]-local[i])
		}
	}

	peak := floats.Max(values)
	if peak <= 0 {
		for i := range values {
			values[i] = 0
		}
		return
	}
	floats.Scale(1/peak, values)
}

// fluxAccumulator keeps the previous compressed spectrum and appends one
// flux value per added frame
type fluxAccumulator struct {
	b       *OnsetEnvelopeBuilder
	prev    []float64
	cur     []float64
	weights []float64
	values  []float64
}

func newFluxAccumulator(b *OnsetEnvelopeBuilder) *fluxAccumulator {
	return &fluxAccumulator{b: b}
}

func (f *fluxAccumulator) add(s analyzers.Spectrum) {
	if f.weights == nil || len(f.weights) != len(s) {
		f.weights = emphasisWeights(len(s), f.b.emphasis)
		f.prev = nil
		f.cur = make([]float64, len(s))
	}

	for k, m := range s {
		f.cur[k] = compress(m, f.b.compression)
	}

	if f.prev == nil {
		// the first frame has no predecessor
		f.values = append(f.values, 0)
		f.prev = make([]float64, len(s))
		copy(f.prev, f.cur)
		return
	}

	var sum float64
	for k := range f.cur {
		if d := f.cur[k] - f.prev[k]; d > 0 {
			sum += d * f.weights[k]
		}
	}
	f.values = append(f.values, sum/float64(len(f.cur)))
	f.prev, f.cur = f.cur, f.prev
}

func compress(m, gamma float64) float64 {
	if gamma <= 0 {
		return m
	}
	return math.Log1p(gamma * m)
}

// emphasisWeights rises linearly from 1 at DC to 1+emphasis at Nyquist
func emphasisWeights(bins int, emphasis float64) []float64 {
	w := make([]float64, bins)
	for k := range w {
		if bins > 1 {
			w[k] = 1 + emphasis*float64(k)/float64(bins-1)
		} else {
			w[k] = 1
		}
	}
	return w
}
