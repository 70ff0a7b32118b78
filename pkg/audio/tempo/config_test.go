package tempo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative window", func(c *Config) { c.WindowLength = -1 }},
		{"hop exceeds window", func(c *Config) { c.WindowLength = 256; c.HopLength = 512 }},
		{"unknown window", func(c *Config) { c.WindowFunction = "kaiser" }},
		{"inverted bpm range", func(c *Config) { c.MinBPM = 200; c.MaxBPM = 100 }},
		{"zero min bpm", func(c *Config) { c.MinBPM = 0 }},
		{"zero prior", func(c *Config) { c.PriorBPM = 0 }},
		{"zero prior width", func(c *Config) { c.PriorWidth = 0 }},
		{"negative tightness", func(c *Config) { c.Tightness = -1 }},
		{"negative emphasis", func(c *Config) { c.HighFreqEmphasis = -1 }},
		{"no waveform points", func(c *Config) { c.MaxWaveformPoints = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, audio.ErrCodeInvalidConfig, audio.ErrorCode(err))

			_, err = NewAnalyzer(cfg, nil)
			assert.Error(t, err)
		})
	}
}

func TestConfigResolve(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 0

	r := cfg.Resolve(22050)
	assert.Equal(t, 512, r.WindowLength)
	assert.Equal(t, 256, r.HopLength)
	assert.Equal(t, 1, r.Workers)

	r = cfg.Resolve(44100)
	assert.Equal(t, 1024, r.WindowLength)
	assert.Equal(t, 512, r.HopLength)

	cfg.WindowLength, cfg.HopLength = 2048, 441
	r = cfg.Resolve(44100)
	assert.Equal(t, 2048, r.WindowLength)
	assert.Equal(t, 441, r.HopLength)
}
