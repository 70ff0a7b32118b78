package tempo

import (
	"math"

	"github.com/RyanBlaney/bpm-analyzer/pkg/logging"
)

// tieEpsilon is the relative score difference under which two lags are
// considered equally good
const tieEpsilon = 1e-6

// TempoEstimate is the dominant tempo of an onset envelope. A zero BPM
// means no tempo was detected.
type TempoEstimate struct {
	BPM        float64 `json:"bpm"`
	Interval   float64 `json:"interval_frames"` // ideal inter-beat interval
	Confidence float64 `json:"confidence"`      // normalised autocorrelation at the chosen lag
}

// NoTempo is the sentinel returned for silent or aperiodic input
var NoTempo = TempoEstimate{}

// Detected reports whether the estimate carries a tempo
func (t TempoEstimate) Detected() bool {
	return t.BPM > 0 && t.Interval > 0
}

// TempoEstimator finds the dominant periodicity of an onset envelope within
// a plausible BPM range, biased towards a preferred tempo
type TempoEstimator struct {
	minBPM     float64
	maxBPM     float64
	priorBPM   float64
	priorWidth float64
	logger     logging.Logger
}

// NewTempoEstimator creates an estimator from the tempo fields of cfg
func NewTempoEstimator(cfg Config, logger logging.Logger) *TempoEstimator {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &TempoEstimator{
		minBPM:     cfg.MinBPM,
		maxBPM:     cfg.MaxBPM,
		priorBPM:   cfg.PriorBPM,
		priorWidth: cfg.PriorWidth,
		logger: logger.WithFields(logging.Fields{
			"component": "tempo_estimator",
			"min_bpm":   cfg.MinBPM,
			"max_bpm":   cfg.MaxBPM,
		}),
	}
}

// Estimate scores every lag in the BPM range by autocorrelation weighted
// with a log-normal prior and returns the best one
func (te *TempoEstimator) Estimate(env *OnsetEnvelope) TempoEstimate {
	n := env.Len()
	frameDur := env.FrameDuration()
	if n < 2 || frameDur <= 0 || te.minBPM <= 0 || te.maxBPM <= te.minBPM {
		return NoTempo
	}

	values := env.Values
	var energy float64
	for _, v := range values {
		energy += v * v
	}
	if energy <= 0 {
		te.logger.Debug("Silent envelope, no tempo")
		return NoTempo
	}

	minLag := 60 / (te.maxBPM * frameDur)
	maxLag := 60 / (te.minBPM * frameDur)
	lo := max(1, int(math.Ceil(minLag)))
	hi := min(n-1, int(math.Floor(maxLag)))
	if lo > hi {
		te.logger.Debug("Envelope too short for the tempo range", logging.Fields{
			"frames": n,
		})
		return NoTempo
	}

	ac := func(lag int) float64 {
		if lag < 1 || lag >= n {
			return 0
		}
		var sum float64
		for i := 0; i+lag < n; i++ {
			sum += values[i] * values[i+lag]
		}
		return sum / energy
	}

	// a peak whose period falls between two frames splits its correlation
	// over adjacent lags, so each lag is scored with its neighbours
	score := make([]float64, hi-lo+1)
	best := 0.0
	for lag := lo; lag <= hi; lag++ {
		r := ac(lag-1) + ac(lag) + ac(lag+1)
		score[lag-lo] = r * te.prior(60/(float64(lag)*frameDur))
		best = math.Max(best, score[lag-lo])
	}
	if best <= 0 {
		te.logger.Debug("No periodicity in tempo range")
		return NoTempo
	}

	// among near-equal scores prefer the lag closest to the prior centre
	bestLag := -1
	bestDist := math.Inf(1)
	for lag := lo; lag <= hi; lag++ {
		if score[lag-lo] < best*(1-tieEpsilon) {
			continue
		}
		d := math.Abs(math.Log2(60 / (float64(lag) * frameDur) / te.priorBPM))
		if d < bestDist {
			bestDist = d
			bestLag = lag
		}
	}

	peak := localPeak(ac, bestLag)
	period := float64(peak) + parabolicOffset(ac(peak-1), ac(peak), ac(peak+1))
	period = math.Min(math.Max(period, minLag), maxLag)

	bpm := te.fold(60 / (period * frameDur))
	est := TempoEstimate{
		BPM:        bpm,
		Interval:   60 / (bpm * frameDur),
		Confidence: ac(peak),
	}

	te.logger.Debug("Tempo estimated", logging.Fields{
		"bpm":        est.BPM,
		"interval":   est.Interval,
		"confidence": est.Confidence,
	})
	return est
}

// prior is a log-normal weight centred on the preferred tempo
func (te *TempoEstimator) prior(bpm float64) float64 {
	z := math.Log2(bpm/te.priorBPM) / te.priorWidth
	return math.Exp(-0.5 * z * z)
}

// fold moves bpm into range by octaves
func (te *TempoEstimator) fold(bpm float64) float64 {
	for i := 0; i < 8 && bpm < te.minBPM; i++ {
		bpm *= 2
	}
	for i := 0; i < 8 && bpm > te.maxBPM; i++ {
		bpm /= 2
	}
	return math.Min(math.Max(bpm, te.minBPM), te.maxBPM)
}

// localPeak returns the lag with the highest correlation among lag and its
// two neighbours, preferring lag itself on ties
func localPeak(ac func(int) float64, lag int) int {
	peak := lag
	for _, l := range []int{lag - 1, lag + 1} {
		if ac(l) > ac(peak) {
			peak = l
		}
	}
	return peak
}

// parabolicOffset returns the vertex offset of the parabola through three
// equally spaced points, limited to half a sample
func parabolicOffset(left, centre, right float64) float64 {
	denom := left - 2*centre + right
	if denom >= 0 {
		return 0
	}
	offset := 0.5 * (left - right) / denom
	return math.Min(math.Max(offset, -0.5), 0.5)
}
