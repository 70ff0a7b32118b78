package configs

import (
	"time"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/decode"
	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/tempo"
)

// SetDefaults registers default values for every configuration key
func SetDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	// Application defaults
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("output_format", d.OutputFormat)

	// Analysis defaults
	a := d.Analysis
	v.SetDefault("analysis.window_length", a.WindowLength)
	v.SetDefault("analysis.hop_length", a.HopLength)
	v.SetDefault("analysis.window_function", a.WindowFunction)
	v.SetDefault("analysis.high_freq_emphasis", a.HighFreqEmphasis)
	v.SetDefault("analysis.log_compression", a.LogCompression)
	v.SetDefault("analysis.normalization_seconds", a.NormalizationSeconds)
	v.SetDefault("analysis.min_bpm", a.MinBPM)
	v.SetDefault("analysis.max_bpm", a.MaxBPM)
	v.SetDefault("analysis.prior_bpm", a.PriorBPM)
	v.SetDefault("analysis.prior_width", a.PriorWidth)
	v.SetDefault("analysis.tightness", a.Tightness)
	v.SetDefault("analysis.max_waveform_points", a.MaxWaveformPoints)
	v.SetDefault("analysis.workers", a.Workers)

	// Decoding defaults
	v.SetDefault("decode.format", string(d.Decode.Format))
	v.SetDefault("decode.sample_rate", d.Decode.SampleRate)
	v.SetDefault("decode.channels", d.Decode.Channels)

	// Server defaults
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.upload_dir", d.Server.UploadDir)

	// Logging defaults
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)
}

// GetDefaultConfig returns a configuration with default values
func GetDefaultConfig() *Config {
	return &Config{
		Verbose:      false,
		OutputFormat: "table",
		Analysis:     tempo.DefaultConfig(),
		Decode:       decode.DefaultOptions(),
		Server:       GetDefaultServerConfig(),
		Log:          GetDefaultLogConfig(),
	}
}

// GetDefaultServerConfig returns default HTTP API settings
func GetDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:         ":8000",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxUploadMB:     64,
		AllowedOrigins:  []string{"http://localhost", "http://localhost:3000"},
		UploadDir:       "",
	}
}

// GetDefaultLogConfig returns default logging settings
func GetDefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "json",
		File:       "",
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 28,
		Compress:   false,
	}
}

// FastAnalysisConfig trades beat precision for speed on long recordings
func FastAnalysisConfig() tempo.Config {
	c := tempo.DefaultConfig()
	c.WindowLength = 2048
	c.HopLength = 1024
	c.MaxWaveformPoints = 1000
	return c
}

// PreciseAnalysisConfig uses a finer hop for tighter beat positions
func PreciseAnalysisConfig() tempo.Config {
	c := tempo.DefaultConfig()
	c.WindowLength = 1024
	c.HopLength = 256
	c.Tightness = 200
	return c
}

// GetAnalysisPreset returns a named analysis preset
func GetAnalysisPreset(name string) (tempo.Config, bool) {
	switch name {
	case "", "default":
		return tempo.DefaultConfig(), true
	case "fast":
		return FastAnalysisConfig(), true
	case "precise":
		return PreciseAnalysisConfig(), true
	default:
		return tempo.Config{}, false
	}
}
