// Package runner drives a pipeline over a list of files and folds the
// per-file outcomes into one run status.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/andyballingall/kvikk-fix/internal/pipeline"
)

// Mode selects the pipeline a run uses.
type Mode int

const (
	ModeRewrite Mode = iota
	ModeCheck
)

func (m Mode) String() string {
	if m == ModeCheck {
		return "check"
	}
	return "rewrite"
}

// Status summarises a run. Higher values take precedence.
type Status int

const (
	StatusClean Status = iota
	StatusNonConforming
	StatusError
)

// Raise returns the higher-precedence of s and other. A status never goes down.
func (s Status) Raise(other Status) Status {
	if other > s {
		return other
	}
	return s
}

// ExitCode maps the status to the process exit code.
func (s Status) ExitCode() int {
	switch s {
	case StatusError:
		return 2
	case StatusNonConforming:
		return 3
	default:
		return 0
	}
}

func (s Status) String() string {
	switch s {
	case StatusError:
		return "error"
	case StatusNonConforming:
		return "non-conforming"
	default:
		return "clean"
	}
}

// Pipeline processes a single file.
type Pipeline interface {
	Rewrite(ctx context.Context, path string) error
	Check(ctx context.Context, path string) (bool, error)
}

// HostPipeline runs the file pipelines against a host. A nil Host uses the
// process default.
type HostPipeline struct {
	Host *pipeline.Host
}

func (p HostPipeline) Rewrite(ctx context.Context, path string) error {
	if p.Host == nil {
		return pipeline.PrettifyFile(ctx, path, nil)
	}
	return pipeline.PrettifyFile(ctx, path, p.Host)
}

func (p HostPipeline) Check(ctx context.Context, path string) (bool, error) {
	if p.Host == nil {
		return pipeline.CheckFile(ctx, path, nil)
	}
	return pipeline.CheckFile(ctx, path, p.Host)
}

// Runner processes files one at a time.
type Runner struct {
	pipeline Pipeline
	logger   *slog.Logger
}

// New creates a Runner.
func New(p Pipeline, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{pipeline: p, logger: logger.With("component", "runner")}
}

// Run attempts every path exactly once, in order. A failing file is recorded
// and the run moves on. Once started, a run is not cut short: ctx is handed
// to each pipeline but Run itself never checks it.
func (r *Runner) Run(ctx context.Context, paths []string, mode Mode) *Report {
	report := NewReport(mode)
	report.StartTime = time.Now()

	for _, p := range paths {
		switch mode {
		case ModeCheck:
			ok, err := r.pipeline.Check(ctx, p)
			if err != nil {
				r.logger.Debug("check failed", "file", p, "error", err)
				report.AddFailure(p, err)
				continue
			}
			r.logger.Debug("checked", "file", p, "conforming", ok)
			report.AddSuccess(p, ok)
		default:
			if err := r.pipeline.Rewrite(ctx, p); err != nil {
				r.logger.Debug("rewrite failed", "file", p, "error", err)
				report.AddFailure(p, err)
				continue
			}
			r.logger.Debug("rewritten", "file", p)
			report.AddSuccess(p, true)
		}
	}

	report.EndTime = time.Now()
	r.logger.Debug("run finished", "mode", mode, "files", len(paths), "status", report.Status)
	return report
}
