// matsync applies a curated material and variant configuration to glTF files.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/matsync/internal/assets"
	"github.com/Faultbox/matsync/internal/batch"
	"github.com/Faultbox/matsync/internal/config"
	"github.com/Faultbox/matsync/internal/logger"
	"github.com/Faultbox/matsync/pkg/gltfdoc"
	"github.com/Faultbox/matsync/pkg/matconfig"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "update":
		os.Exit(cmdRun(batch.ModeUpdate, args))
	case "export":
		os.Exit(cmdRun(batch.ModeExport, args))
	case "inspect":
		os.Exit(cmdInspect(args))
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`matsync - glTF material and variant batch tool

Usage:
  matsync <command> [options]

Commands:
  update   Merge the reference materials into every target and apply variants
  export   Split every target into one pruned document per variant
  inspect  <file.gltf>  Show document summary and index integrity

Options (update, export):
  -config <file>      Settings file (default ./matsync.yaml)
  -reference <file>   Reference .gltf (update only)
  -targets <dir>      Directory of target .gltf files, or one file
  -materials <file>   Material configuration JSON
  -out <dir>          Output directory
  -model <label>      Only targets listed under this model (Regular = all)
  -variants=false     Skip KHR_materials_variants assignment
  -mood               Apply mood texture rotation
  -workers <n>        Files processed in parallel
  -bundle <name.zip>  Write exports into one zip file
  -debug              Enable debug logging

Examples:
  matsync update -reference Reference.gltf -targets models -materials materials.json
  matsync export -targets models/chair_01.gltf -materials materials.json -bundle chair.zip
  matsync inspect out/chair_01.gltf`)
}

func cmdRun(mode batch.Mode, args []string) int {
	if err := config.ParseFlags(mode.String(), args, os.Stderr); err != nil {
		return 2
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	if err := logger.InitWithOptions(logger.Options{
		Level:   cfg.Logging.Level,
		Console: true,
		File:    fileConfig(cfg.Logging.LogFile),
		JSON:    cfg.Logging.JSON,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := run(ctx, mode, cfg)
	if err != nil {
		logger.Error("batch aborted", zap.Error(err))
		return 1
	}

	for _, f := range report.Failures() {
		fmt.Fprintf(os.Stderr, "FAILED %s: %s\n", f.File, f.Message)
	}
	if report.Err() != nil {
		return 1
	}
	return 0
}

func fileConfig(path string) logger.FileConfig {
	if path == "" {
		return logger.FileConfig{}
	}
	return logger.DefaultFileConfig(path)
}

func run(ctx context.Context, mode batch.Mode, cfg *config.Config) (*batch.Report, error) {
	if cfg.Paths.Materials == "" {
		return nil, errors.New("no material configuration given (-materials)")
	}
	if cfg.Paths.Targets == "" {
		return nil, errors.New("no targets given (-targets)")
	}

	files := assets.NewManager()
	defer files.Close()

	data, err := files.Load(cfg.Paths.Materials)
	if err != nil {
		return nil, err
	}
	materials, err := matconfig.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("material configuration: %w", err)
	}
	for _, name := range materials.DanglingReferences() {
		logger.Warn("assignment references unknown material", zap.String("material", name))
	}

	job := batch.Job{
		Mode:              mode,
		Config:            materials,
		Reader:            files,
		ModelLabel:        cfg.Processing.ModelLabel,
		ApplyVariants:     cfg.Processing.ApplyVariants,
		ApplyMoodRotation: cfg.Processing.ApplyMoodRotation,
		Conventions:       cfg.Conventions,
		Workers:           cfg.Processing.Workers,
	}

	if mode == batch.ModeUpdate {
		if cfg.Paths.Reference == "" {
			return nil, batch.ErrNoReference
		}
		data, err := files.Load(cfg.Paths.Reference)
		if err != nil {
			return nil, err
		}
		if job.Reference, err = gltfdoc.Parse(data); err != nil {
			return nil, fmt.Errorf("reference: %w", err)
		}
		digest, _ := files.Digest(cfg.Paths.Reference)
		logger.Info("reference loaded",
			zap.String("file", cfg.Paths.Reference),
			zap.Int("materials", len(job.Reference.Materials)),
			zap.String("xxhash", fmt.Sprintf("%x", digest)))
	}

	targets, err := assets.ListModels(cfg.Paths.Targets)
	if err != nil {
		return nil, fmt.Errorf("listing targets: %w", err)
	}
	// Never overwrite the reference with its own update.
	job.Targets = excludePath(targets, cfg.Paths.Reference)
	logger.Info("batch started", zap.Stringer("mode", mode), zap.Int("targets", len(job.Targets)))

	report, err := batch.Run(ctx, job)
	if err != nil {
		return nil, err
	}
	if err := writeOutputs(mode, cfg, report); err != nil {
		return nil, err
	}
	return report, nil
}

func writeOutputs(mode batch.Mode, cfg *config.Config, report *batch.Report) error {
	outputs := report.Outputs()
	out := cfg.Paths.Output

	if mode == batch.ModeExport && cfg.Processing.Bundle != "" {
		path := filepath.Join(out, cfg.Processing.Bundle)
		if err := batch.WriteBundle(path, outputs); err != nil {
			return fmt.Errorf("writing bundle: %w", err)
		}
		fmt.Printf("Bundled: %s (%d documents)\n", path, len(outputs))
	} else {
		paths, err := batch.WriteFiles(out, outputs)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Printf("Wrote: %s\n", p)
		}
	}

	if cfg.Processing.Manifest {
		if err := batch.WriteManifest(filepath.Join(out, "manifest.json"), mode, report); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
	}
	return nil
}

func excludePath(paths []string, exclude string) []string {
	if exclude == "" {
		return paths
	}
	abs, err := filepath.Abs(exclude)
	if err != nil {
		return paths
	}
	kept := paths[:0]
	for _, p := range paths {
		if pa, err := filepath.Abs(p); err == nil && pa == abs {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func cmdInspect(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: matsync inspect <file.gltf>")
		return 1
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	s, err := gltfdoc.Inspect(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("File:        %s\n", args[0])
	fmt.Printf("Materials:   %d\n", s.Materials)
	fmt.Printf("Textures:    %d\n", s.Textures)
	fmt.Printf("Images:      %d\n", s.Images)
	fmt.Printf("Samplers:    %d\n", s.Samplers)
	fmt.Printf("Meshes:      %d (%d primitives, %d with variants)\n", s.Meshes, s.Primitives, s.Mapped)
	fmt.Printf("Variants:    %s\n", strings.Join(s.Variants, ", "))
	fmt.Printf("Extensions:  %s\n", strings.Join(s.ExtensionsUsed, ", "))

	if s.Integrity != nil {
		fmt.Println()
		fmt.Println("Index integrity problems:")
		for _, line := range strings.Split(s.Integrity.Error(), "; ") {
			fmt.Printf("  %s\n", line)
		}
		return 1
	}
	fmt.Println("Integrity:   ok")
	return 0
}
