package decode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio"
	"github.com/RyanBlaney/bpm-analyzer/pkg/logging"
)

func TestWriteWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	in := audio.NewSignal([]float64{0, 0.5, -0.5, 2, -2}, 16000)
	require.NoError(t, WriteWAV(f, in, 16))
	require.NoError(t, f.Close())

	out, err := NewDecoder(logging.NewNop()).DecodeFile(path, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 16000, out.SampleRate)
	require.Equal(t, 5, out.Len())
	assert.InDelta(t, 0.0, out.Samples[0], 1e-9)
	assert.InDelta(t, 0.5, out.Samples[1], 1e-9)
	assert.InDelta(t, -0.5, out.Samples[2], 1e-9)
	// clipped
	assert.InDelta(t, 32767.0/32768.0, out.Samples[3], 1e-9)
	assert.InDelta(t, -1.0, out.Samples[4], 1e-9)
}

func TestWriteWAVRejects(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "bad.wav"))
	require.NoError(t, err)
	defer f.Close()

	err = WriteWAV(f, audio.NewSignal(nil, 16000), 16)
	assert.ErrorIs(t, err, audio.ErrInvalidSignal)

	err = WriteWAV(f, audio.NewSignal([]float64{0.1}, 16000), 12)
	assert.Error(t, err)
}
