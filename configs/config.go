package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/decode"
	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/tempo"
	"github.com/RyanBlaney/bpm-analyzer/pkg/logging"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose"`
	OutputFormat string `mapstructure:"output_format"`

	// Tempo and beat analysis
	Analysis tempo.Config `mapstructure:"analysis"`

	// Input decoding
	Decode decode.Options `mapstructure:"decode"`

	// HTTP API
	Server ServerConfig `mapstructure:"server"`

	// Logging
	Log LogConfig `mapstructure:"log"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadMB     int64         `mapstructure:"max_upload_mb"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	UploadDir       string        `mapstructure:"upload_dir"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLogging converts the section to a logging configuration
func (l LogConfig) ToLogging() logging.Config {
	return logging.Config{
		Level:      logging.Level(l.Level),
		Format:     l.Format,
		OutputPath: l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

// LoadConfig loads configuration from the global viper instance
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(viper.GetViper())
}

// LoadConfigFrom loads configuration from v, falling back to the defaults
// for every key v does not set
func LoadConfigFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if err := config.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	if _, err := decode.ParseFormat(string(config.Decode.Format)); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	if config.Decode.SampleRate <= 0 {
		return fmt.Errorf("decode sample rate must be positive")
	}

	if config.Decode.Channels <= 0 {
		return fmt.Errorf("decode channels must be positive")
	}

	switch config.OutputFormat {
	case "json", "yaml", "table":
	default:
		return fmt.Errorf("unsupported output format: %s", config.OutputFormat)
	}

	if config.Server.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}

	if config.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server max upload size must be positive")
	}

	if config.Server.ReadTimeout < 0 || config.Server.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts cannot be negative")
	}

	if _, err := logging.ParseLevel(logging.Level(config.Log.Level)); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	return nil
}
