// Package decode turns uploaded audio files into mono signals at their
// native sample rate.
package decode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio"
	"github.com/RyanBlaney/bpm-analyzer/pkg/logging"
)

// Format names an input encoding
type Format string

const (
	FormatAuto  Format = "auto"
	FormatWAV   Format = "wav"
	FormatS16LE Format = "s16le"
	FormatS32LE Format = "s32le"
	FormatF32LE Format = "f32le"
	FormatU8    Format = "u8"
)

// Options describes how to interpret the input. SampleRate and Channels
// are only consulted for headerless PCM.
type Options struct {
	Format     Format `json:"format" yaml:"format" mapstructure:"format"`
	SampleRate int    `json:"sample_rate" yaml:"sample_rate" mapstructure:"sample_rate"`
	Channels   int    `json:"channels" yaml:"channels" mapstructure:"channels"`
}

// DefaultOptions detects WAV input and assumes 22.05 kHz mono for raw PCM
func DefaultOptions() Options {
	return Options{
		Format:     FormatAuto,
		SampleRate: 22050,
		Channels:   1,
	}
}

// ParseFormat accepts a format name, case-insensitively
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatWAV, FormatS16LE, FormatS32LE, FormatF32LE, FormatU8:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported audio format: %s", name)
	}
}

// Decoder reads audio files into signals
type Decoder struct {
	logger logging.Logger
}

// NewDecoder creates a decoder
func NewDecoder(logger logging.Logger) *Decoder {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Decoder{
		logger: logger.WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
}

// DecodeFile opens path and decodes it. With FormatAuto the format is taken
// from the file extension, falling back to WAV header detection.
func (d *Decoder) DecodeFile(path string, opts Options) (*audio.Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, audio.NewAnalysisError(audio.StageDecode, audio.ErrCodeDecoding,
			"failed to open audio file", err)
	}
	defer f.Close()

	if opts.Format == "" || opts.Format == FormatAuto {
		if ext, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil && ext != FormatAuto {
			opts.Format = ext
		}
	}

	signal, err := d.Decode(f, opts)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("Decoded audio file", logging.Fields{
		"path":        path,
		"format":      string(opts.Format),
		"samples":     signal.Len(),
		"sample_rate": signal.SampleRate,
	})
	return signal, nil
}

// Decode reads the whole of r. Multi-channel input is averaged to mono.
func (d *Decoder) Decode(r io.ReadSeeker, opts Options) (*audio.Signal, error) {
	format := opts.Format
	if format == "" || format == FormatAuto {
		if isWAV(r) {
			format = FormatWAV
		} else {
			return nil, audio.NewAnalysisError(audio.StageDecode, audio.ErrCodeDecoding,
				"unrecognised audio format, specify a raw PCM format explicitly", nil)
		}
	}

	var signal *audio.Signal
	var err error
	switch format {
	case FormatWAV:
		signal, err = decodeWAV(r)
	default:
		var data []byte
		data, err = io.ReadAll(r)
		if err != nil {
			return nil, audio.NewAnalysisError(audio.StageDecode, audio.ErrCodeDecoding,
				"failed to read audio data", err)
		}
		signal, err = DecodePCM(data, format, opts.SampleRate, opts.Channels)
	}
	if err != nil {
		d.logger.Error(err, "Failed to decode audio", logging.Fields{
			"format": string(format),
		})
		return nil, err
	}

	if signal.Len() == 0 {
		return nil, audio.NewAnalysisError(audio.StageDecode, audio.ErrCodeInvalidSignal,
			"audio contains no samples", nil)
	}
	return signal, nil
}

// isWAV peeks at the RIFF/WAVE header and rewinds r
func isWAV(r io.ReadSeeker) bool {
	header := make([]byte, 12)
	n, _ := io.ReadFull(r, header)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return false
	}
	return n == 12 && string(header[0:4]) == "RIFF" && string(header[8:12]) == "WAVE"
}

// downmix averages interleaved channels into one
func downmix(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		out[i] = sum / float64(channels)
	}
	return out
}
