package decode

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// decodeWAV reads integer PCM WAV data scaled to [-1, 1) at the file's own
// sample rate
func decodeWAV(r io.ReadSeeker) (*audio.Signal, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, audio.NewAnalysisError(audio.StageDecode, audio.ErrCodeDecoding,
			"invalid wav file", nil)
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, audio.NewAnalysisError(audio.StageDecode, audio.ErrCodeDecoding,
			fmt.Sprintf("unsupported wav encoding %d", dec.WavAudioFormat), nil)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, audio.NewAnalysisError(audio.StageDecode, audio.ErrCodeDecoding,
			"failed to read wav samples", err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, audio.NewAnalysisError(audio.StageDecode, audio.ErrCodeDecoding,
			"wav file has no audio format", nil)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	if bitDepth < 8 || bitDepth > 32 {
		return nil, audio.NewAnalysisError(audio.StageDecode, audio.ErrCodeDecoding,
			fmt.Sprintf("unsupported bit depth %d", bitDepth), nil)
	}

	scale := float64(int64(1) << (bitDepth - 1))
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		if bitDepth == 8 {
			// 8-bit wav is unsigned
			v -= 128
		}
		samples[i] = float64(v) / scale
	}

	sampleRate := buf.Format.SampleRate
	if sampleRate == 0 {
		sampleRate = int(dec.SampleRate)
	}
	return audio.NewSignal(downmix(samples, buf.Format.NumChannels), sampleRate), nil
}
