package decode

import (
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio"
)

// WriteWAV encodes a mono signal as integer PCM WAV. Samples outside
// [-1, 1] are clipped.
func WriteWAV(w io.WriteSeeker, signal *audio.Signal, bitDepth int) error {
	if err := signal.Validate(); err != nil {
		return err
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	scale := math.Pow(2, float64(bitDepth-1))
	data := make([]int, signal.Len())
	for i, v := range signal.Samples {
		q := math.Round(math.Max(-1, math.Min(1, v)) * scale)
		q = math.Min(q, scale-1)
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			q += 128
		}
		data[i] = int(q)
	}

	enc := wav.NewEncoder(w, signal.SampleRate, bitDepth, 1, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			SampleRate:  signal.SampleRate,
			NumChannels: 1,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	return enc.Close()
}
