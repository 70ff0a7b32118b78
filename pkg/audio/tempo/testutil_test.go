package tempo

import (
	"math"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio"
)

// clickTrack places unit impulses every period seconds starting at zero
func clickTrack(sampleRate int, seconds, period float64) *audio.Signal {
	samples := make([]float64, int(seconds*float64(sampleRate)))
	for k := 0; ; k++ {
		i := int(math.Round(float64(k) * period * float64(sampleRate)))
		if i >= len(samples) {
			break
		}
		samples[i] = 1.0
	}
	return audio.NewSignal(samples, sampleRate)
}

// nearestMultiple returns the distance from t to the closest k*period
func nearestMultiple(t, period float64) float64 {
	return math.Abs(t - math.Round(t/period)*period)
}

// pulseEnvelope builds an envelope with unit pulses every period frames
func pulseEnvelope(n, offset, period int) *OnsetEnvelope {
	values := make([]float64, n)
	for i := offset; i < n; i += period {
		values[i] = 1
	}
	return &OnsetEnvelope{Values: values, HopLength: 256, SampleRate: 22050}
}

// fractionalPulseEnvelope places unit pulses at the frames nearest to
// offset+k*period, so the spacing alternates between two whole frame counts
func fractionalPulseEnvelope(n, offset int, period float64) *OnsetEnvelope {
	values := make([]float64, n)
	for k := 0; ; k++ {
		i := int(math.Round(float64(offset) + float64(k)*period))
		if i >= n {
			break
		}
		values[i] = 1
	}
	return &OnsetEnvelope{Values: values, HopLength: 256, SampleRate: 22050}
}

// periodFrames converts bpm to an inter-beat interval in frames of env
func periodFrames(env *OnsetEnvelope, bpm float64) float64 {
	return 60 / (bpm * env.FrameDuration())
}
