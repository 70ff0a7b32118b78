package tempo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/analyzers"
	"github.com/RyanBlaney/bpm-analyzer/pkg/logging"
)

func constantSpectrum(bins int, v float64) analyzers.Spectrum {
	s := make(analyzers.Spectrum, bins)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestOnsetEnvelopeTooFewSpectra(t *testing.T) {
	b := NewOnsetEnvelopeBuilder(256, 22050, DefaultConfig(), logging.NewNop())

	env := b.Build(nil)
	assert.Equal(t, 0, env.Len())

	env = b.Build([]analyzers.Spectrum{constantSpectrum(257, 3)})
	require.Equal(t, 1, env.Len())
	assert.Equal(t, 0.0, env.Values[0])
	assert.True(t, env.IsSilent())
}

func TestOnsetEnvelopeStationarySpectraIsSilent(t *testing.T) {
	b := NewOnsetEnvelopeBuilder(256, 22050, DefaultConfig(), logging.NewNop())

	spectra := make([]analyzers.Spectrum, 20)
	for i := range spectra {
		spectra[i] = constantSpectrum(257, 0.5)
	}
	env := b.Build(spectra)
	require.Equal(t, 20, env.Len())
	assert.True(t, env.IsSilent())
}

func TestOnsetEnvelopePeaksAtEnergyRise(t *testing.T) {
	for _, norm := range []float64{0, 1.0} {
		cfg := DefaultConfig()
		cfg.NormalizationSeconds = norm
		b := NewOnsetEnvelopeBuilder(256, 22050, cfg, logging.NewNop())

		spectra := make([]analyzers.Spectrum, 10)
		for i := range spectra {
			v := 0.0
			if i >= 5 {
				v = 1.0
			}
			spectra[i] = constantSpectrum(129, v)
		}

		env := b.Build(spectra)
		require.Equal(t, 10, env.Len(), "norm=%g", norm)
		assert.Equal(t, 0.0, env.Values[0], "norm=%g", norm)
		assert.InDelta(t, 1.0, env.Values[5], 1e-12, "norm=%g", norm)
		for i, v := range env.Values {
			assert.GreaterOrEqual(t, v, 0.0, "frame %d", i)
			assert.LessOrEqual(t, v, 1.0, "frame %d", i)
		}
	}
}

func TestOnsetEnvelopeIgnoresEnergyDecay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NormalizationSeconds = 0
	b := NewOnsetEnvelopeBuilder(256, 22050, cfg, logging.NewNop())

	spectra := []analyzers.Spectrum{
		constantSpectrum(65, 1),
		constantSpectrum(65, 0),
		constantSpectrum(65, 0),
	}
	env := b.Build(spectra)
	assert.True(t, env.IsSilent())
}

func TestOnsetEnvelopeFrameTiming(t *testing.T) {
	env := &OnsetEnvelope{Values: make([]float64, 4), HopLength: 256, SampleRate: 22050}
	assert.InDelta(t, 256.0/22050.0, env.FrameDuration(), 1e-12)
	assert.InDelta(t, 3*256.0/22050.0, env.FrameTime(3), 1e-12)

	var nilEnv *OnsetEnvelope
	assert.Equal(t, 0, nilEnv.Len())
	assert.Equal(t, 0.0, nilEnv.FrameDuration())
}

func TestBuildFromIteratorMatchesBuild(t *testing.T) {
	signal := clickTrack(22050, 3, 0.5)
	fa, err := analyzers.NewFrameAnalyzer(512, 256, analyzers.WindowHann, logging.NewNop())
	require.NoError(t, err)

	b := NewOnsetEnvelopeBuilder(256, 22050, DefaultConfig(), logging.NewNop())

	it, err := fa.Frames(signal.Samples)
	require.NoError(t, err)
	// a partially drained iterator is rewound
	it.Next()
	streamed := b.BuildFromIterator(it)

	spectra, err := fa.Compute(context.Background(), signal.Samples, 2)
	require.NoError(t, err)
	batch := b.Build(spectra)

	require.Equal(t, batch.Len(), streamed.Len())
	for i := range batch.Values {
		assert.InDelta(t, batch.Values[i], streamed.Values[i], 1e-12, "frame %d", i)
	}
}

func TestEmphasisWeights(t *testing.T) {
	w := emphasisWeights(5, 1.0)
	assert.Equal(t, []float64{1, 1.25, 1.5, 1.75, 2}, w)
	assert.Equal(t, []float64{1}, emphasisWeights(1, 1.0))
	assert.Equal(t, 0.5, compress(0.5, 0))
}

func TestOnsetEnvelopeBelowSilenceFloor(t *testing.T) {
	b := NewOnsetEnvelopeBuilder(256, 22050, DefaultConfig(), logging.NewNop())

	spectra := make([]analyzers.Spectrum, 30)
	for i := range spectra {
		spectra[i] = constantSpectrum(257, 1e-12*float64(i%3))
	}
	env := b.Build(spectra)
	require.Equal(t, 30, env.Len())
	assert.True(t, env.IsSilent())
}
