package decode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio"
)

// DecodePCM converts headerless little-endian PCM to a mono signal
func DecodePCM(data []byte, format Format, sampleRate, channels int) (*audio.Signal, error) {
	if sampleRate <= 0 {
		return nil, audio.NewAnalysisError(audio.StageDecode, audio.ErrCodeDecoding,
			fmt.Sprintf("raw pcm needs a positive sample rate, got %d", sampleRate), nil)
	}
	if channels < 1 {
		channels = 1
	}

	var samples []float64
	var err error
	switch format {
	case FormatS16LE:
		samples, err = convertS16(data)
	case FormatS32LE:
		samples, err = convertS32(data)
	case FormatF32LE:
		samples, err = convertFloat32(data)
	case FormatU8:
		samples = convertU8(data)
	default:
		return nil, audio.NewAnalysisError(audio.StageDecode, audio.ErrCodeDecoding,
			fmt.Sprintf("unsupported raw pcm format %q", format), nil)
	}
	if err != nil {
		return nil, err
	}

	if len(samples)%channels != 0 {
		return nil, audio.NewAnalysisError(audio.StageDecode, audio.ErrCodeDecoding,
			fmt.Sprintf("%d samples do not divide into %d channels", len(samples), channels), nil)
	}
	return audio.NewSignal(downmix(samples, channels), sampleRate), nil
}

func misaligned(width, size int) error {
	return audio.NewAnalysisError(audio.StageDecode, audio.ErrCodeDecoding,
		fmt.Sprintf("buffer size %d not aligned for %d-byte samples", size, width), nil)
}

// convertS16 reads 16-bit signed samples
func convertS16(buffer []byte) ([]float64, error) {
	if len(buffer)%2 != 0 {
		return nil, misaligned(2, len(buffer))
	}
	samples := make([]float64, len(buffer)/2)
	for i := range samples {
		samples[i] = float64(int16(binary.LittleEndian.Uint16(buffer[i*2:]))) / 32768.0
	}
	return samples, nil
}

// convertS32 reads 32-bit signed samples
func convertS32(buffer []byte) ([]float64, error) {
	if len(buffer)%4 != 0 {
		return nil, misaligned(4, len(buffer))
	}
	samples := make([]float64, len(buffer)/4)
	for i := range samples {
		samples[i] = float64(int32(binary.LittleEndian.Uint32(buffer[i*4:]))) / 2147483648.0
	}
	return samples, nil
}

// convertFloat32 reads 32-bit float samples. Non-finite values are rejected
// here so they never reach the analyzer.
func convertFloat32(buffer []byte) ([]float64, error) {
	if len(buffer)%4 != 0 {
		return nil, misaligned(4, len(buffer))
	}
	samples := make([]float64, len(buffer)/4)
	for i := range samples {
		v := float64(math.Float32frombits(binary.LittleEndian.Uint32(buffer[i*4:])))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, audio.NewAnalysisError(audio.StageDecode, audio.ErrCodeInvalidSignal,
				fmt.Sprintf("non-finite sample at index %d", i), nil)
		}
		samples[i] = v
	}
	return samples, nil
}

// convertU8 reads 8-bit unsigned samples centred on 128
func convertU8(buffer []byte) []float64 {
	samples := make([]float64, len(buffer))
	for i, b := range buffer {
		samples[i] = (float64(b) - 128.0) / 128.0
	}
	return samples
}
