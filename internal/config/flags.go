package config

import (
	"flag"
	"io"
)

type flagValues struct {
	config    string
	debug     bool
	reference string
	targets   string
	output    string
	materials string
	model     string
	variants  bool
	mood      bool
	workers   int
	bundle    string
	manifest  bool

	set  map[string]bool
	args []string
}

var flags flagValues

// ParseFlags parses the command-line flags of a subcommand. Call it before
// Load. Usage errors are written to out.
func ParseFlags(command string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(out)

	var v flagValues
	fs.StringVar(&v.config, "config", "", "Path to settings file")
	fs.BoolVar(&v.debug, "debug", false, "Enable debug logging")
	fs.StringVar(&v.reference, "reference", "", "Reference .gltf file")
	fs.StringVar(&v.targets, "targets", "", "Directory of target .gltf files, or one file")
	fs.StringVar(&v.output, "out", "", "Output directory")
	fs.StringVar(&v.materials, "materials", "", "Material configuration JSON")
	fs.StringVar(&v.model, "model", "", "Model label gating which targets run (empty or Regular = all)")
	fs.BoolVar(&v.variants, "variants", true, "Apply KHR_materials_variants assignments")
	fs.BoolVar(&v.mood, "mood", false, "Apply mood texture rotation")
	fs.IntVar(&v.workers, "workers", 0, "Files processed in parallel")
	fs.StringVar(&v.bundle, "bundle", "", "Write exports into this zip file inside the output directory")
	fs.BoolVar(&v.manifest, "manifest", true, "Write manifest.json")

	if err := fs.Parse(args); err != nil {
		return err
	}
	v.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { v.set[f.Name] = true })
	v.args = fs.Args()
	flags = v
	return nil
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return flags.config
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flags.args
}

// applyFlags applies CLI flag overrides to the config. Only flags given on
// the command line override file values.
func applyFlags(cfg *Config) {
	if flags.debug {
		cfg.Logging.Level = "debug"
	}
	if flags.reference != "" {
		cfg.Paths.Reference = flags.reference
	}
	if flags.targets != "" {
		cfg.Paths.Targets = flags.targets
	}
	if flags.output != "" {
		cfg.Paths.Output = flags.output
	}
	if flags.materials != "" {
		cfg.Paths.Materials = flags.materials
	}
	if flags.set["model"] {
		cfg.Processing.ModelLabel = flags.model
	}
	if flags.set["variants"] {
		cfg.Processing.ApplyVariants = flags.variants
	}
	if flags.set["mood"] {
		cfg.Processing.ApplyMoodRotation = flags.mood
	}
	if flags.workers > 0 {
		cfg.Processing.Workers = flags.workers
	}
	if flags.bundle != "" {
		cfg.Processing.Bundle = flags.bundle
	}
	if flags.set["manifest"] {
		cfg.Processing.Manifest = flags.manifest
	}
}
