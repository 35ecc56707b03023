package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Paths.Output != "out" {
		t.Errorf("expected output 'out', got %s", cfg.Paths.Output)
	}
	if !cfg.Processing.ApplyVariants {
		t.Error("expected apply_variants to be true by default")
	}
	if cfg.Processing.ApplyMoodRotation {
		t.Error("expected apply_mood_rotation to be false by default")
	}
	if cfg.Processing.Workers != 1 {
		t.Errorf("expected 1 worker, got %d", cfg.Processing.Workers)
	}

	// Conventions
	if cfg.Conventions.MoodPrefix != "MOO-" {
		t.Errorf("expected mood prefix 'MOO-', got %s", cfg.Conventions.MoodPrefix)
	}
	if cfg.Conventions.AlternateRotation != 1.56 {
		t.Errorf("expected alternate rotation 1.56, got %f", cfg.Conventions.AlternateRotation)
	}
	if cfg.Conventions.AO.ImageMarker != "_AO" {
		t.Errorf("expected AO image marker '_AO', got %s", cfg.Conventions.AO.ImageMarker)
	}
	if cfg.Conventions.AlternateModel != "Blavalen" {
		t.Errorf("expected alternate model 'Blavalen', got %s", cfg.Conventions.AlternateModel)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, fileName)

	yamlContent := `
paths:
  reference: "ref/Reference.gltf"
  targets: "models"
  output: "updated"
  materials: "materials.json"

processing:
  model_label: "Blavalen"
  apply_variants: false
  apply_mood_rotation: true
  workers: 4
  bundle: "variants.zip"

conventions:
  mood_prefix: "MOOD_"
  alternate_rotation: 3.14
  ao:
    image_marker: "_OCC"

logging:
  level: "debug"
  log_file: "matsync.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Paths.Reference != "ref/Reference.gltf" {
		t.Errorf("expected reference ref/Reference.gltf, got %s", cfg.Paths.Reference)
	}
	if cfg.Paths.Materials != "materials.json" {
		t.Errorf("expected materials materials.json, got %s", cfg.Paths.Materials)
	}
	if cfg.Processing.ModelLabel != "Blavalen" {
		t.Errorf("expected model label Blavalen, got %s", cfg.Processing.ModelLabel)
	}
	if cfg.Processing.ApplyVariants {
		t.Error("expected apply_variants to be false")
	}
	if !cfg.Processing.ApplyMoodRotation {
		t.Error("expected apply_mood_rotation to be true")
	}
	if cfg.Processing.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Processing.Workers)
	}
	if cfg.Conventions.MoodPrefix != "MOOD_" {
		t.Errorf("expected mood prefix MOOD_, got %s", cfg.Conventions.MoodPrefix)
	}
	if cfg.Conventions.AlternateRotation != 3.14 {
		t.Errorf("expected alternate rotation 3.14, got %f", cfg.Conventions.AlternateRotation)
	}
	if cfg.Conventions.AO.ImageMarker != "_OCC" {
		t.Errorf("expected AO image marker _OCC, got %s", cfg.Conventions.AO.ImageMarker)
	}
	// Untouched nested values keep their defaults
	if cfg.Conventions.AO.TextureMarker != "tex_AmbientOcclusion_A" {
		t.Errorf("expected default AO texture marker, got %s", cfg.Conventions.AO.TextureMarker)
	}
	if cfg.Logging.LogFile != "matsync.log" {
		t.Errorf("expected log file matsync.log, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
processing:
  workers: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/matsync.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(fileName, []byte("processing:\n  workers: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find matsync.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(t *testing.T, cfg *Config)
	}{
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "paths",
			args: []string{"-reference", "ref.gltf", "-targets", "in", "-out", "dist", "-materials", "m.json"},
			verify: func(t *testing.T, cfg *Config) {
				p := cfg.Paths
				if p.Reference != "ref.gltf" || p.Targets != "in" || p.Output != "dist" || p.Materials != "m.json" {
					t.Errorf("unexpected paths: %+v", p)
				}
			},
		},
		{
			name: "variants disabled explicitly",
			args: []string{"-variants=false"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Processing.ApplyVariants {
					t.Error("expected apply_variants to be false")
				}
			},
		},
		{
			name: "unset bool flags keep config values",
			args: []string{},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Processing.ApplyVariants {
					t.Error("expected apply_variants to stay true")
				}
				if !cfg.Processing.Manifest {
					t.Error("expected manifest to stay true")
				}
			},
		},
		{
			name: "model, mood and workers",
			args: []string{"-model", "Blavalen", "-mood", "-workers", "3", "extra.gltf"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Processing.ModelLabel != "Blavalen" {
					t.Errorf("expected model Blavalen, got %s", cfg.Processing.ModelLabel)
				}
				if !cfg.Processing.ApplyMoodRotation {
					t.Error("expected mood rotation enabled")
				}
				if cfg.Processing.Workers != 3 {
					t.Errorf("expected 3 workers, got %d", cfg.Processing.Workers)
				}
				if args := Args(); len(args) != 1 || args[0] != "extra.gltf" {
					t.Errorf("expected positional [extra.gltf], got %v", args)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ParseFlags("update", tt.args, io.Discard); err != nil {
				t.Fatalf("parse flags: %v", err)
			}
			defer func() { flags = flagValues{} }()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, fileName)

	yamlContent := `
processing:
  workers: 2
  model_label: "Regular"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := ParseFlags("update", []string{"-config", configPath, "-workers", "8"}, io.Discard); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	defer func() { flags = flagValues{} }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Workers from flag, not file
	if cfg.Processing.Workers != 8 {
		t.Errorf("expected 8 workers from flag, got %d", cfg.Processing.Workers)
	}
	// Model label from file since no flag override
	if cfg.Processing.ModelLabel != "Regular" {
		t.Errorf("expected model label Regular from file, got %s", cfg.Processing.ModelLabel)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", fileName)

	cfg := Default()
	cfg.Paths.Materials = "materials.json"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Paths.Materials != "materials.json" {
		t.Errorf("expected materials.json after reload, got %s", loaded.Paths.Materials)
	}
}
