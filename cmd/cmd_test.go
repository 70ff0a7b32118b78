package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/bpm-analyzer/pkg/output"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestClickTrackThenAnalyze(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "click.wav")
	reportPath := filepath.Join(dir, "report.json")

	require.NoError(t, execute(t, "clicktrack", "--bpm", "120", "--duration", "6", wavPath))
	require.FileExists(t, wavPath)

	require.NoError(t, execute(t, "analyze", "-o", "json", "--detailed", "--output-file", reportPath, wavPath))

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)

	var report output.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.InDelta(t, 120, report.BPM, 2)
	assert.InDelta(t, 6.0, report.Duration, 1e-9)
	assert.NotEmpty(t, report.BeatTimes)
	require.NotNil(t, report.Details)
	assert.Equal(t, wavPath, report.Details.Source)
}

func TestClickTrackRejectsBadFlags(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bad.wav")
	assert.Error(t, execute(t, "clicktrack", "--bpm", "0", out))
	assert.Error(t, execute(t, "clicktrack", "--bpm", "120", "--amplitude", "1.5", out))
	assert.NoFileExists(t, out)
}

func TestProfileGenerateAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, execute(t, "profile", "generate", path))
	require.NoError(t, execute(t, "profile", "validate", path))
}

func TestAnalyzeMissingFile(t *testing.T) {
	err := execute(t, "analyze", "--output-file", "", filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestPerformanceTimer(t *testing.T) {
	timer := NewPerformanceTimer()
	timer.StartEvent("step")
	timer.EndEvent("step")

	assert.GreaterOrEqual(t, timer.GetDuration("step").Nanoseconds(), int64(0))
	assert.Zero(t, timer.GetDuration("never"))
	assert.GreaterOrEqual(t, timer.GetTotalDuration(), timer.GetDuration("step"))
}
