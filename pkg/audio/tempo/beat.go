package tempo

import (
	"math"

	"github.com/RyanBlaney/bpm-analyzer/pkg/logging"
)

// Beat is one selected beat position
type Beat struct {
	Frame    int     `json:"frame"`
	Time     float64 `json:"time"`
	Strength float64 `json:"strength"`
}

// BeatSequence is ordered by strictly increasing frame
type BeatSequence []Beat

// Times returns the beat positions in seconds
func (bs BeatSequence) Times() []float64 {
	times := make([]float64, len(bs))
	for i, b := range bs {
		times[i] = b.Time
	}
	return times
}

// BeatTracker selects the globally best beat sequence for a tempo with a
// dynamic program over onset envelope frames
type BeatTracker struct {
	tightness float64
	logger    logging.Logger
}

// NewBeatTracker creates a tracker. tightness scales the penalty for
// intervals that deviate from the tempo.
func NewBeatTracker(cfg Config, logger logging.Logger) *BeatTracker {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &BeatTracker{
		tightness: cfg.Tightness,
		logger: logger.WithFields(logging.Fields{
			"component": "beat_tracker",
			"tightness": cfg.Tightness,
		}),
	}
}

// Track returns the beat sequence maximising onset strength at the beats
// minus the interval penalty between consecutive beats.
//
// score[i] = env[i] + max(0, max_j score[j] - tightness*log²((i-j)/period))
// with i-j limited to [period/2, 2*period]. The zero alternative lets any
// frame start a sequence.
func (bt *BeatTracker) Track(env *OnsetEnvelope, est TempoEstimate) BeatSequence {
	n := env.Len()
	if n == 0 || !est.Detected() || env.IsSilent() {
		return BeatSequence{}
	}

	period := est.Interval
	minGap := max(1, int(math.Round(period/2)))
	maxGap := max(minGap, int(math.Round(2*period)))

	penalty := make([]float64, maxGap+1)
	for d := minGap; d <= maxGap; d++ {
		r := math.Log(float64(d) / period)
		penalty[d] = -bt.tightness * r * r
	}

	values := env.Values
	score := make([]float64, n)
	back := make([]int, n)
	for i := 0; i < n; i++ {
		best, from := 0.0, -1
		for d := minGap; d <= maxGap && i-d >= 0; d++ {
			if c := score[i-d] + penalty[d]; c > best {
				best, from = c, i-d
			}
		}
		score[i] = values[i] + best
		back[i] = from
	}

	last := 0
	for i := 1; i < n; i++ {
		if score[i] > score[last] {
			last = i
		}
	}
	if score[last] <= 0 {
		return BeatSequence{}
	}

	var frames []int
	for i := last; i >= 0; i = back[i] {
		frames = append(frames, i)
	}

	beats := make(BeatSequence, len(frames))
	for k, f := range frames {
		beats[len(frames)-1-k] = Beat{
			Frame:    f,
			Time:     env.FrameTime(f),
			Strength: values[f],
		}
	}

	bt.logger.Debug("Beats tracked", logging.Fields{
		"frames": n,
		"period": period,
		"beats":  len(beats),
	})
	return beats
}
