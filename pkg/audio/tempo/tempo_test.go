package tempo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/bpm-analyzer/pkg/logging"
)

func TestEstimatePulseTrain(t *testing.T) {
	// 43 frames at 256/22050 s per frame is 120.2 BPM
	env := pulseEnvelope(861, 0, 43)
	est := NewTempoEstimator(DefaultConfig(), logging.NewNop()).Estimate(env)

	require.True(t, est.Detected())
	assert.InDelta(t, 120.2, est.BPM, 1.0)
	assert.InDelta(t, 43, est.Interval, 0.5)
	assert.Greater(t, est.Confidence, 0.5)
	assert.LessOrEqual(t, est.Confidence, 1.0)
}

func TestEstimateFractionalPeriods(t *testing.T) {
	te := NewTempoEstimator(DefaultConfig(), logging.NewNop())
	ref := &OnsetEnvelope{HopLength: 256, SampleRate: 22050}

	tests := []struct {
		name string
		bpm  float64
	}{
		{"66 bpm", 66},
		{"90 bpm", 90},
		{"100 bpm", 100},
		{"125 bpm", 125},
		{"150 bpm", 150},
		{"174 bpm", 174},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := fractionalPulseEnvelope(861, 4, periodFrames(ref, tt.bpm))
			est := te.Estimate(env)

			require.True(t, est.Detected())
			assert.InDelta(t, tt.bpm, est.BPM, 1.0)
			assert.InDelta(t, periodFrames(env, est.BPM), est.Interval, 1e-9)
			assert.Greater(t, est.Confidence, 0.4)
			assert.LessOrEqual(t, est.Confidence, 1.0)
		})
	}
}

func TestEstimateFastTempoResolvesToOctave(t *testing.T) {
	te := NewTempoEstimator(DefaultConfig(), logging.NewNop())
	ref := &OnsetEnvelope{HopLength: 256, SampleRate: 22050}

	for _, bpm := range []float64{200, 210} {
		env := fractionalPulseEnvelope(861, 4, periodFrames(ref, bpm))
		est := te.Estimate(env)

		require.True(t, est.Detected(), "bpm=%g", bpm)
		full := math.Abs(est.BPM-bpm) <= 0.02*bpm
		half := math.Abs(est.BPM-bpm/2) <= 0.02*bpm/2
		assert.True(t, full || half, "bpm=%g estimated %g", bpm, est.BPM)
	}
}

func TestLocalPeak(t *testing.T) {
	r := map[int]float64{33: 0.1, 34: 0.6, 35: 0.52, 36: 0.05}
	ac := func(lag int) float64 { return r[lag] }

	assert.Equal(t, 34, localPeak(ac, 34))
	assert.Equal(t, 34, localPeak(ac, 35))
	assert.Equal(t, 34, localPeak(ac, 33))
	// ties keep the scored lag
	flat := func(int) float64 { return 1 }
	assert.Equal(t, 10, localPeak(flat, 10))
}

func TestEstimateStaysInRange(t *testing.T) {
	// pulses every 20 frames are 258 BPM, outside the default range
	env := pulseEnvelope(861, 3, 20)
	cfg := DefaultConfig()
	est := NewTempoEstimator(cfg, logging.NewNop()).Estimate(env)

	require.True(t, est.Detected())
	assert.GreaterOrEqual(t, est.BPM, cfg.MinBPM)
	assert.LessOrEqual(t, est.BPM, cfg.MaxBPM)
}

func TestEstimateNoTempo(t *testing.T) {
	te := NewTempoEstimator(DefaultConfig(), logging.NewNop())

	tests := []struct {
		name string
		env  *OnsetEnvelope
	}{
		{"nil", nil},
		{"empty", &OnsetEnvelope{HopLength: 256, SampleRate: 22050}},
		{"silent", &OnsetEnvelope{Values: make([]float64, 500), HopLength: 256, SampleRate: 22050}},
		{"shorter than slowest lag", pulseEnvelope(10, 0, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := te.Estimate(tt.env)
			assert.Equal(t, NoTempo, est)
			assert.False(t, est.Detected())
		})
	}
}

func TestEstimateIsDeterministic(t *testing.T) {
	env := pulseEnvelope(600, 7, 37)
	te := NewTempoEstimator(DefaultConfig(), logging.NewNop())
	assert.Equal(t, te.Estimate(env), te.Estimate(env))
}

func TestPriorPeaksAtPreferredTempo(t *testing.T) {
	te := NewTempoEstimator(DefaultConfig(), logging.NewNop())
	assert.InDelta(t, 1.0, te.prior(120), 1e-12)
	assert.InDelta(t, math.Exp(-0.5), te.prior(240), 1e-12)
	assert.InDelta(t, te.prior(60), te.prior(240), 1e-12)
	assert.Greater(t, te.prior(100), te.prior(70))
}

func TestFold(t *testing.T) {
	te := NewTempoEstimator(DefaultConfig(), logging.NewNop())
	assert.InDelta(t, 60, te.fold(30), 1e-9)
	assert.InDelta(t, 200, te.fold(400), 1e-9)
	assert.InDelta(t, 120, te.fold(120), 1e-9)
	// 230 halves to 115
	assert.InDelta(t, 115, te.fold(230), 1e-9)
}

func TestParabolicOffset(t *testing.T) {
	assert.Equal(t, 0.0, parabolicOffset(1, 2, 1))
	assert.InDelta(t, 1.0/6.0, parabolicOffset(1, 2, 1.5), 1e-12)
	assert.InDelta(t, -1.0/6.0, parabolicOffset(1.5, 2, 1), 1e-12)
	// not a maximum
	assert.Equal(t, 0.0, parabolicOffset(2, 1, 2))
	assert.Equal(t, 0.5, parabolicOffset(0, 1, 1))
}
