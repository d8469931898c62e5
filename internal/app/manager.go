package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/andyballingall/kvikk-fix/internal/fs"
	"github.com/andyballingall/kvikk-fix/internal/report"
	"github.com/andyballingall/kvikk-fix/internal/runner"
	"github.com/andyballingall/kvikk-fix/internal/watch"
)

// Request describes one invocation of the tool once the command line has been
// parsed and the file list resolved.
type Request struct {
	Files     []string
	Mode      runner.Mode
	Format    string
	Verbose   bool
	UseColour bool
	// Base shortens paths in the text report.
	Base string
}

// Manager runs batches and watch sessions.
type Manager interface {
	Run(ctx context.Context, req Request) (runner.Status, error)
	Watch(ctx context.Context, req Request, readyChan chan<- struct{}) error
}

// Ensure the interface is satisfied.
var _ Manager = (*CLIManager)(nil)

// CLIManager is the concrete implementation of the Manager interface. JSON
// reports go to stdout and text reports to the diagnostic stream.
type CLIManager struct {
	logger *slog.Logger
	runner *runner.Runner
	files  fs.FileAccess
	stdout io.Writer
	stderr io.Writer
}

func NewCLIManager(logger *slog.Logger, r *runner.Runner, files fs.FileAccess, stdout, stderr io.Writer) *CLIManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CLIManager{
		logger: logger,
		runner: r,
		files:  files,
		stdout: stdout,
		stderr: stderr,
	}
}

// Run processes every file in req once and reports the outcome. The batch
// itself is never cut short by ctx.
func (m *CLIManager) Run(ctx context.Context, req Request) (runner.Status, error) {
	m.logger.Debug("running batch", "mode", req.Mode, "files", len(req.Files), "format", req.Format,
		"verbose", req.Verbose, "useColour", req.UseColour)

	rpt := m.runner.Run(context.WithoutCancel(ctx), req.Files, req.Mode)
	if err := m.write(req, rpt); err != nil {
		return rpt.Status, err
	}
	return rpt.Status, nil
}

// Watch runs the pipeline for each project file as it changes until ctx is
// cancelled. If you want to know when the watcher is ready to start listening
// to changes, pass a non-nil readyChan to be notified.
func (m *CLIManager) Watch(ctx context.Context, req Request, readyChan chan<- struct{}) error {
	m.logger.Debug("watching files", "mode", req.Mode, "files", len(req.Files))

	watcher := watch.New(req.Files, m.files, m.logger)

	callback := func(path string) {
		m.logger.Info("File changed:", "file", path)
		rpt := m.runner.Run(context.WithoutCancel(ctx), []string{path}, req.Mode)
		if err := m.write(req, rpt); err != nil {
			m.logger.Error("Failed to write report", "error", err)
		}
	}

	// Forward watcher Ready signal if caller wants notification
	if readyChan != nil {
		go func() {
			select {
			case <-watcher.Ready:
				readyChan <- struct{}{}
			case <-ctx.Done():
			}
		}()
	}

	return watcher.Watch(ctx, callback)
}

func (m *CLIManager) write(req Request, rpt *runner.Report) error {
	var reporter runner.Reporter
	w := m.stderr
	switch req.Format {
	case "json":
		reporter = &report.JSONReporter{}
		w = m.stdout
	default:
		reporter = &report.TextReporter{Verbose: req.Verbose, UseColour: req.UseColour, Base: req.Base}
	}
	return reporter.Write(w, rpt)
}
