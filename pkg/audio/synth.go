package audio

import "math"

// ClickTrack renders single-sample clicks of the given amplitude every
// period seconds, starting at zero
func ClickTrack(sampleRate int, seconds, period, amplitude float64) *Signal {
	n := 0
	if sampleRate > 0 && seconds > 0 {
		n = int(seconds * float64(sampleRate))
	}
	samples := make([]float64, n)
	if period <= 0 {
		return NewSignal(samples, sampleRate)
	}
	for k := 0; ; k++ {
		i := int(math.Round(float64(k) * period * float64(sampleRate)))
		if i >= n {
			break
		}
		samples[i] = amplitude
	}
	return NewSignal(samples, sampleRate)
}
