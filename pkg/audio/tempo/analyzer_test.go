package tempo

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio"
	"github.com/RyanBlaney/bpm-analyzer/pkg/logging"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(DefaultConfig(), logging.NewNop())
	require.NoError(t, err)
	return a
}

func TestAnalyzeClickTrack(t *testing.T) {
	a := newTestAnalyzer(t)

	result, err := a.Analyze(context.Background(), clickTrack(22050, 10, 0.5))
	require.NoError(t, err)

	assert.InDelta(t, 120, result.BPM, 2)
	assert.True(t, result.TempoDetected())
	assert.InDelta(t, 10.0, result.Duration, 1e-9)
	assert.Equal(t, 861, result.Frames)

	// the impulse at 0 s falls on the zero of the first window
	require.GreaterOrEqual(t, len(result.BeatTimes), 18)
	assert.LessOrEqual(t, len(result.BeatTimes), 21)
	for _, bt := range result.BeatTimes {
		assert.Less(t, nearestMultiple(bt, 0.5), 0.03, "beat at %.3fs", bt)
	}
	for i := 1; i < len(result.BeatTimes); i++ {
		assert.Greater(t, result.BeatTimes[i], result.BeatTimes[i-1])
	}

	require.NotNil(t, result.Waveform)
	assert.LessOrEqual(t, len(result.Waveform.Points), 2000)
	assert.Equal(t, 0.0, result.Waveform.Points[0].Time)
	assert.InDelta(t, 10.0, result.Waveform.Points[len(result.Waveform.Points)-1].Time, 1e-9)
}

func TestAnalyzeDoubleDensityClickTrack(t *testing.T) {
	a := newTestAnalyzer(t)

	// 240 BPM lies outside the search range so the half tempo is reported
	result, err := a.Analyze(context.Background(), clickTrack(22050, 10, 0.25))
	require.NoError(t, err)
	assert.InDelta(t, 120, result.BPM, 3)
	for _, bt := range result.BeatTimes {
		assert.Less(t, nearestMultiple(bt, 0.25), 0.03, "beat at %.3fs", bt)
	}
}

func TestAnalyzeClickTracksAcrossSampleRates(t *testing.T) {
	a := newTestAnalyzer(t)

	tests := []struct {
		name       string
		sampleRate int
		bpm        float64
		// a half-tempo report is accepted when the doubled period is
		// equally periodic and closer to the preferred tempo
		octaveOK bool
	}{
		{"150 bpm at 22.05k", 22050, 150, false},
		{"150 bpm at 44.1k", 44100, 150, false},
		{"150 bpm at 48k", 48000, 150, false},
		{"174 bpm at 48k", 48000, 174, false},
		{"174 bpm at 8k", 8000, 174, false},
		{"120 bpm at 8k", 8000, 120, false},
		{"200 bpm at 22.05k", 22050, 200, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period := 60 / tt.bpm
			result, err := a.Analyze(context.Background(), audio.ClickTrack(tt.sampleRate, 10, period, 1))
			require.NoError(t, err)
			require.True(t, result.TempoDetected())

			bpm := float64(result.BPM)
			if tt.octaveOK && math.Abs(bpm-tt.bpm/2) <= 2 {
				bpm *= 2
			}
			assert.InDelta(t, tt.bpm, bpm, 2)

			expected := int(10 * float64(result.BPM) / 60)
			assert.GreaterOrEqual(t, len(result.BeatTimes), expected-2)
			for _, bt := range result.BeatTimes {
				assert.Less(t, nearestMultiple(bt, period), 0.03, "beat at %.3fs", bt)
			}
		})
	}
}

func TestAnalyzeQuietClickTrack(t *testing.T) {
	a := newTestAnalyzer(t)

	result, err := a.Analyze(context.Background(), audio.ClickTrack(22050, 6, 0.5, 1e-4))
	require.NoError(t, err)
	assert.InDelta(t, 120, result.BPM, 2)
}

func TestAnalyzeRoundingNoiseIsSilent(t *testing.T) {
	a := newTestAnalyzer(t)

	samples := make([]float64, 22050*5)
	for i := range samples {
		samples[i] = 1e-12 * float64(i%3)
	}
	result, err := a.Analyze(context.Background(), audio.NewSignal(samples, 22050))
	require.NoError(t, err)

	assert.Equal(t, 0, result.BPM)
	assert.False(t, result.TempoDetected())
	assert.Empty(t, result.BeatTimes)
}

func TestAnalyzeSilence(t *testing.T) {
	a := newTestAnalyzer(t)

	signal := audio.NewSignal(make([]float64, 22050*5), 22050)
	result, err := a.Analyze(context.Background(), signal)
	require.NoError(t, err)

	assert.Equal(t, 0, result.BPM)
	assert.False(t, result.TempoDetected())
	assert.Empty(t, result.BeatTimes)
	assert.False(t, result.Tempo.Detected())
	require.NotNil(t, result.Waveform)
	assert.NotEmpty(t, result.Waveform.Points)
}

func TestAnalyzeNoiseStaysInRange(t *testing.T) {
	a := newTestAnalyzer(t)
	rng := rand.New(rand.NewSource(7))

	samples := make([]float64, 22050*4)
	for i := range samples {
		samples[i] = rng.Float64()*2 - 1
	}
	result, err := a.Analyze(context.Background(), audio.NewSignal(samples, 22050))
	require.NoError(t, err)

	if result.BPM != 0 {
		assert.GreaterOrEqual(t, result.BPM, 50)
		assert.LessOrEqual(t, result.BPM, 220)
	}
	for i := 1; i < len(result.BeatTimes); i++ {
		assert.Greater(t, result.BeatTimes[i], result.BeatTimes[i-1])
	}
	for _, bt := range result.BeatTimes {
		assert.GreaterOrEqual(t, bt, 0.0)
		assert.LessOrEqual(t, bt, result.Duration)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	a := newTestAnalyzer(t)
	signal := clickTrack(44100, 6, 0.6)

	first, err := a.Analyze(context.Background(), signal)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), signal)
	require.NoError(t, err)

	assert.Equal(t, first.BPM, second.BPM)
	assert.Equal(t, first.BeatTimes, second.BeatTimes)
	assert.Equal(t, first.Waveform, second.Waveform)
}

func TestAnalyzeRejectsInvalidSignals(t *testing.T) {
	a := newTestAnalyzer(t)

	_, err := a.Analyze(context.Background(), audio.NewSignal(nil, 22050))
	require.Error(t, err)
	assert.True(t, errors.Is(err, audio.ErrInvalidSignal))

	_, err = a.Analyze(context.Background(), audio.NewSignal([]float64{0.1, 0.2}, 0))
	assert.True(t, errors.Is(err, audio.ErrInvalidSignal))
}

func TestAnalyzeHonoursCancellation(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, clickTrack(22050, 2, 0.5))
	require.Error(t, err)
	assert.Equal(t, audio.ErrCodeCancelled, audio.ErrorCode(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeShortSignal(t *testing.T) {
	a := newTestAnalyzer(t)

	result, err := a.Analyze(context.Background(), audio.NewSignal([]float64{0, 0.5, -0.5, 0}, 22050))
	require.NoError(t, err)
	assert.Equal(t, 0, result.BPM)
	assert.Empty(t, result.BeatTimes)
	assert.Equal(t, 1, result.Frames)
}

func TestReportedBPM(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0, reportedBPM(NoTempo, cfg))
	assert.Equal(t, 120, reportedBPM(TempoEstimate{BPM: 120.4, Interval: 43}, cfg))
	assert.Equal(t, 220, reportedBPM(TempoEstimate{BPM: 219.9, Interval: 23}, cfg))

	cfg.MinBPM = 50.5
	assert.Equal(t, 51, reportedBPM(TempoEstimate{BPM: 50.5, Interval: 100}, cfg))
}
