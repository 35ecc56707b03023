// Package batch runs the update and export pipelines over many target files.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/matsync/internal/logger"
	"github.com/Faultbox/matsync/internal/pipeline"
	"github.com/Faultbox/matsync/pkg/gltfdoc"
	"github.com/Faultbox/matsync/pkg/matconfig"
)

// ErrNoReference is returned when an update job has no reference document.
var ErrNoReference = errors.New("update requires a reference document")

// Mode selects the pipeline a job runs.
type Mode int

// Processing modes.
const (
	ModeUpdate Mode = iota
	ModeExport
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeUpdate:
		return "update"
	case ModeExport:
		return "export"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "update":
		return ModeUpdate, nil
	case "export":
		return ModeExport, nil
	}
	return 0, fmt.Errorf("unknown processing mode %q", s)
}

// Reader supplies file contents.
type Reader interface {
	Read(path string) ([]byte, error)
}

// Job describes one batch run. Reference and Config are shared read-only by
// every file pipeline.
type Job struct {
	Mode      Mode
	Reference *gltfdoc.Document
	Config    *matconfig.Document
	Targets   []string // file paths
	Reader    Reader

	ModelLabel        string
	ApplyVariants     bool
	ApplyMoodRotation bool
	Conventions       pipeline.Conventions

	// Workers > 1 processes that many files at once.
	Workers int
	// Progress, when set, receives per-file pipeline progress. It may be
	// called from several goroutines.
	Progress func(file string, fraction float64)
}

// Output is one produced document.
type Output struct {
	Source   string // target file name
	FileName string
	Variant  string // export mode only
	Data     []byte
	Digest   uint64 // xxhash64 of Data
}

// Failure records a file that could not be processed.
type Failure struct {
	File    string
	Message string
}

// Result is the outcome for one target file.
type Result struct {
	File      string
	Outputs   []Output
	Filtered  bool // excluded by the model label
	Cancelled bool
	Err       error
}

// Report collects the results of a run in target order.
type Report struct {
	Results []Result
}

// Outputs returns every produced document in target order.
func (r *Report) Outputs() []Output {
	var out []Output
	for _, res := range r.Results {
		out = append(out, res.Outputs...)
	}
	return out
}

// Failures returns one record per failed file.
func (r *Report) Failures() []Failure {
	var out []Failure
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, Failure{File: res.File, Message: res.Err.Error()})
		}
	}
	return out
}

// Err combines every per-file error, or returns nil.
func (r *Report) Err() error {
	var errs error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", res.File, res.Err))
		}
	}
	return errs
}

// Run processes every target. It fails only for job-level problems; file
// failures are recorded in the report and never stop sibling files.
// Cancelling ctx stops files that have not started yet.
func Run(ctx context.Context, job Job) (*Report, error) {
	if job.Config == nil {
		return nil, pipeline.ErrNoConfiguration
	}
	if job.Mode == ModeUpdate && job.Reference == nil {
		return nil, ErrNoReference
	}
	if job.Reader == nil {
		return nil, errors.New("batch job has no reader")
	}
	job.warnUnknownModel()

	results := make([]Result, len(job.Targets))
	workers := job.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(job.Targets) {
		workers = len(job.Targets)
	}

	if workers <= 1 {
		for i, path := range job.Targets {
			results[i] = job.process(ctx, path)
		}
		return &Report{Results: results}, nil
	}

	indexes := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				results[idx] = job.process(ctx, job.Targets[idx])
			}
		}()
	}
	for i := range job.Targets {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return &Report{Results: results}, nil
}

func (j *Job) warnUnknownModel() {
	if j.Conventions.Unrestricted(j.ModelLabel) {
		return
	}
	if _, ok := j.Config.ModelEntries(j.ModelLabel); !ok {
		logger.Warn("model label not in configuration, processing all targets", zap.String("model", j.ModelLabel))
	}
}

// admits reports whether the model label lets fileName through.
func (j *Job) admits(fileName string) bool {
	if j.Conventions.Unrestricted(j.ModelLabel) {
		return true
	}
	if _, ok := j.Config.ModelEntries(j.ModelLabel); !ok {
		return true
	}
	return j.Config.ModelMatchesFile(j.ModelLabel, fileName)
}

func (j *Job) process(ctx context.Context, path string) Result {
	name := filepath.Base(path)
	res := Result{File: name}

	if ctx.Err() != nil {
		res.Cancelled = true
		return res
	}
	if !j.admits(name) {
		logger.Debug("target filtered by model label", zap.String("file", name), zap.String("model", j.ModelLabel))
		res.Filtered = true
		return res
	}

	data, err := j.Reader.Read(path)
	if err != nil {
		res.Err = err
		return res
	}
	doc, err := gltfdoc.Parse(data)
	if err != nil {
		res.Err = err
		logger.Error("target rejected", zap.String("file", name), zap.Error(err))
		return res
	}

	switch j.Mode {
	case ModeUpdate:
		res.Outputs, res.Err = j.update(doc, name)
	case ModeExport:
		res.Outputs, res.Err = j.export(doc, name)
	default:
		res.Err = fmt.Errorf("unsupported mode %v", j.Mode)
	}

	if res.Err != nil {
		logger.Error("file failed", zap.String("file", name), zap.Error(res.Err))
	} else {
		logger.Info("file processed", zap.String("file", name), zap.Int("outputs", len(res.Outputs)))
	}
	return res
}

func (j *Job) update(doc *gltfdoc.Document, name string) ([]Output, error) {
	opts := pipeline.UpdateOptions{
		ModelLabel:        j.ModelLabel,
		ApplyVariants:     j.ApplyVariants,
		ApplyMoodRotation: j.ApplyMoodRotation,
		Config:            j.Config,
		FileName:          name,
		Conventions:       j.Conventions,
	}
	if j.Progress != nil {
		opts.Progress = func(p float64) { j.Progress(name, p) }
	}
	data, err := pipeline.Update(j.Reference, doc, opts)
	if err != nil {
		return nil, err
	}
	if err := checkIntegrity(data); err != nil {
		return nil, err
	}
	return []Output{newOutput(name, name, "", data)}, nil
}

// export keeps every variant that succeeded even when others failed.
func (j *Job) export(doc *gltfdoc.Document, name string) ([]Output, error) {
	exports, errs := pipeline.ExportVariants(doc, pipeline.ExportOptions{
		FileName:          name,
		ModelLabel:        j.ModelLabel,
		ApplyMoodRotation: j.ApplyMoodRotation,
		Config:            j.Config,
		Conventions:       j.Conventions,
	})
	var outputs []Output
	for _, e := range exports {
		if err := checkIntegrity(e.Data); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("variant %q: %w", e.Variant, err))
			continue
		}
		outputs = append(outputs, newOutput(name, e.FileName, e.Variant, e.Data))
	}
	if j.Progress != nil {
		j.Progress(name, 1)
	}
	return outputs, errs
}

func checkIntegrity(data []byte) error {
	doc, err := gltfdoc.Parse(data)
	if err != nil {
		return fmt.Errorf("re-reading output: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("output integrity: %w", err)
	}
	return nil
}

func newOutput(source, fileName, variant string, data []byte) Output {
	return Output{
		Source:   source,
		FileName: fileName,
		Variant:  variant,
		Data:     data,
		Digest:   xxhash.Sum64(data),
	}
}
