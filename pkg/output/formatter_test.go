package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/tempo"
	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/waveform"
)

func sampleResult() *tempo.Result {
	return &tempo.Result{
		BPM:       120,
		BeatTimes: []float64{0.5, 1.0, 1.5},
		Waveform: &waveform.Summary{
			Points:   []waveform.Point{{Time: 0, Amplitude: 0.25}, {Time: 2, Amplitude: -0.5}},
			Duration: 2,
		},
		Duration:   2,
		Tempo:      tempo.TempoEstimate{BPM: 120.14, Interval: 43, Confidence: 0.9},
		SampleRate: 22050,
		Frames:     173,
		Elapsed:    15 * time.Millisecond,
	}
}

func TestReportJSONShape(t *testing.T) {
	f, err := NewFormatter("json")
	require.NoError(t, err)

	out, err := f.Format(NewReport(sampleResult(), false))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, 120.0, decoded["bpm"])
	assert.Equal(t, []any{0.5, 1.0, 1.5}, decoded["beat_times"])
	assert.Equal(t, []any{[]any{0.0, 0.25}, []any{2.0, -0.5}}, decoded["waveform_data"])
	assert.Equal(t, 2.0, decoded["duration"])
	assert.NotContains(t, decoded, "details")
}

func TestReportEmptyCollectionsEncodeAsArrays(t *testing.T) {
	r := NewReport(&tempo.Result{Duration: 1}, false)
	out, err := (&JSONFormatter{}).Format(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"beat_times":[]`)
	assert.Contains(t, string(out), `"waveform_data":[]`)
}

func TestReportYAML(t *testing.T) {
	f, err := NewFormatter("yaml")
	require.NoError(t, err)

	out, err := f.Format(NewReport(sampleResult(), true))
	require.NoError(t, err)

	var decoded struct {
		BPM          int         `yaml:"bpm"`
		WaveformData [][]float64 `yaml:"waveform_data"`
		Details      struct {
			SampleRate int `yaml:"sample_rate"`
		} `yaml:"details"`
	}
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, 120, decoded.BPM)
	assert.Equal(t, [][]float64{{0, 0.25}, {2, -0.5}}, decoded.WaveformData)
	assert.Equal(t, 22050, decoded.Details.SampleRate)
}

func TestReportTable(t *testing.T) {
	out, err := (&TableFormatter{MaxBeats: 2}).Format(NewReport(sampleResult(), true))
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "Bpm")
	assert.Contains(t, text, "120")
	assert.Contains(t, text, "Beat Times")
	assert.Contains(t, text, "0.50, 1.00, ... (+1)")
	assert.Contains(t, text, "22050 Hz")
	assert.Contains(t, text, "Tempo Confidence")
}

func TestTableNoTempo(t *testing.T) {
	out, err := (&TableFormatter{}).Format(NewReport(&tempo.Result{Duration: 3}, false))
	require.NoError(t, err)
	assert.Contains(t, string(out), "not detected")
}

func TestTableMapRowsSorted(t *testing.T) {
	out, err := (&TableFormatter{}).Format(map[string]any{"max_bpm": 220, "min_bpm": 50})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Max Bpm"))
	assert.True(t, strings.HasPrefix(lines[1], "Min Bpm"))

	_, err = (&TableFormatter{}).Format(42)
	assert.Error(t, err)
}

func TestNewFormatterRejectsUnknown(t *testing.T) {
	_, err := NewFormatter("xml")
	assert.Error(t, err)
}
