package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/bpm-analyzer/configs"
	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/decode"
	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/tempo"
)

// Profile is an analysis override file. Keys it leaves out keep the value
// of the configuration it is merged into.
type Profile struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Analysis    tempo.Config   `yaml:"analysis" json:"analysis"`
	Decode      decode.Options `yaml:"decode" json:"decode"`
}

// loadProfileFromFile loads a profile from a YAML or JSON file on top of base
func loadProfileFromFile(filePath string, base Profile) (*Profile, error) {
	// Check if file exists
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("profile file does not exist: %s", filePath)
	}

	// Determine file format
	ext := filepath.Ext(filePath)
	switch ext {
	case ".yaml", ".yml":
		return loadProfileFromYAML(filePath, base)
	case ".json":
		return loadProfileFromJSON(filePath, base)
	default:
		// Try YAML first, then JSON
		if p, err := loadProfileFromYAML(filePath, base); err == nil {
			return p, nil
		}
		return loadProfileFromJSON(filePath, base)
	}
}

// loadProfileFromYAML loads a profile from a YAML file
func loadProfileFromYAML(filePath string, base Profile) (*Profile, error) {
	data, err := readProfile(filePath)
	if err != nil {
		return nil, err
	}

	profile := base
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML profile: %w", err)
	}

	return &profile, nil
}

// loadProfileFromJSON loads a profile from a JSON file
func loadProfileFromJSON(filePath string, base Profile) (*Profile, error) {
	data, err := readProfile(filePath)
	if err != nil {
		return nil, err
	}

	profile := base
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse JSON profile: %w", err)
	}

	return &profile, nil
}

func readProfile(filePath string) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	return data, nil
}

// mergeConfig layers the preset, the profile file and the CLI flags, in
// that order, over the base configuration
func mergeConfig(baseConfig *configs.Config, ctx *Context) (*configs.Config, error) {
	merged := *baseConfig

	if ctx.Preset != "" {
		preset, ok := configs.GetAnalysisPreset(ctx.Preset)
		if !ok {
			return nil, fmt.Errorf("unknown analysis preset: %s", ctx.Preset)
		}
		merged.Analysis = preset
	}

	if ctx.ProfileFile != "" {
		profile, err := loadProfileFromFile(ctx.ProfileFile, Profile{
			Analysis: merged.Analysis,
			Decode:   merged.Decode,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		merged.Analysis = profile.Analysis
		merged.Decode = profile.Decode
	}

	// Override with CLI flags
	if ctx.OutputFormat != "" {
		merged.OutputFormat = ctx.OutputFormat
	}
	if ctx.InputFormat != "" {
		format, err := decode.ParseFormat(ctx.InputFormat)
		if err != nil {
			return nil, err
		}
		merged.Decode.Format = format
	}
	if ctx.SampleRate > 0 {
		merged.Decode.SampleRate = ctx.SampleRate
	}
	if ctx.Channels > 0 {
		merged.Decode.Channels = ctx.Channels
	}
	if ctx.Workers > 0 {
		merged.Analysis.Workers = ctx.Workers
	}
	if ctx.Verbose {
		merged.Verbose = true
	}

	return &merged, nil
}

// GenerateExampleProfile writes a profile holding every analysis default
func GenerateExampleProfile(outputFile string) error {
	example := &Profile{
		Name:        "default",
		Description: "Default tempo and beat analysis settings",
		Analysis:    tempo.DefaultConfig(),
		Decode:      decode.DefaultOptions(),
	}

	// Write to YAML file
	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal example profile: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile file: %w", err)
	}

	return nil
}

// ValidateProfile loads a profile over the defaults and validates the result
func ValidateProfile(profileFile string) (*Profile, error) {
	defaults := configs.GetDefaultConfig()
	profile, err := loadProfileFromFile(profileFile, Profile{
		Analysis: defaults.Analysis,
		Decode:   defaults.Decode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := profile.Analysis.Validate(); err != nil {
		return nil, fmt.Errorf("profile validation failed: %w", err)
	}
	if _, err := decode.ParseFormat(string(profile.Decode.Format)); err != nil {
		return nil, fmt.Errorf("profile validation failed: %w", err)
	}

	return profile, nil
}
