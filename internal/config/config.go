// Package config handles matsync settings loading and management.
package config

import "github.com/Faultbox/matsync/internal/pipeline"

// Config holds all matsync settings.
type Config struct {
	Paths       PathsConfig          `yaml:"paths"`
	Processing  ProcessingConfig     `yaml:"processing"`
	Conventions pipeline.Conventions `yaml:"conventions"`
	Logging     LoggingConfig        `yaml:"logging"`
}

// PathsConfig holds input and output locations.
type PathsConfig struct {
	Reference string `yaml:"reference"` // reference .gltf (update mode)
	Targets   string `yaml:"targets"`   // directory of .gltf files, or one file
	Output    string `yaml:"output"`    // output directory
	Materials string `yaml:"materials"` // material configuration JSON
}

// ProcessingConfig holds pipeline switches.
type ProcessingConfig struct {
	ModelLabel        string `yaml:"model_label"`
	ApplyVariants     bool   `yaml:"apply_variants"`
	ApplyMoodRotation bool   `yaml:"apply_mood_rotation"`
	Workers           int    `yaml:"workers"`  // 1 = sequential
	Bundle            string `yaml:"bundle"`   // zip file name for exports, empty = loose files
	Manifest          bool   `yaml:"manifest"` // write manifest.json next to outputs
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Output: "out",
		},
		Processing: ProcessingConfig{
			ApplyVariants:     true,
			ApplyMoodRotation: false,
			Workers:           1,
			Manifest:          true,
		},
		Conventions: pipeline.DefaultConventions(),
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
