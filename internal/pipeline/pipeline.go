// Package pipeline runs the per-file rewrite and check sequences.
//
// Both pipelines resolve the file's configuration, merge it over the
// defaults and read the source once. Rewrite then formats and writes the
// result back; check asks the engine whether the source already conforms
// and never writes.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/andyballingall/kvikk-fix/internal/config"
	"github.com/andyballingall/kvikk-fix/internal/engine"
	"github.com/andyballingall/kvikk-fix/internal/fs"
)

type FileReader interface {
	ReadFile(path string) (string, error)
}

type FileWriter interface {
	WriteFile(path, data string) error
}

type Formatter interface {
	Format(path, source string, opts config.Options) (string, error)
}

type Checker interface {
	Check(path, source string, opts config.Options) (bool, error)
}

// RewriteHost is everything PrettifyFile needs from its environment.
type RewriteHost interface {
	FileReader
	FileWriter
	config.Resolver
	Formatter
}

// CheckHost is everything CheckFile needs. It has no write capability.
type CheckHost interface {
	FileReader
	config.Resolver
	Checker
}

// Host bundles the three collaborators into a value satisfying both
// RewriteHost and CheckHost.
type Host struct {
	Files  fs.FileAccess
	Config config.Resolver
	Engine engine.Engine
}

func (h *Host) ReadFile(path string) (string, error) {
	return h.Files.ReadFile(path)
}

func (h *Host) WriteFile(path, data string) error {
	return h.Files.WriteFile(path, data)
}

func (h *Host) ResolveConfig(ctx context.Context, path string) (config.Options, error) {
	return h.Config.ResolveConfig(ctx, path)
}

func (h *Host) Format(path, source string, opts config.Options) (string, error) {
	return h.Engine.Format(path, source, opts)
}

func (h *Host) Check(path, source string, opts config.Options) (bool, error) {
	return h.Engine.Check(path, source, opts)
}

// NewHost wires a Host from OS file access, the file-based config resolver
// and the given engine.
func NewHost(eng engine.Engine, logger *slog.Logger) (*Host, error) {
	files := fs.NewOSFileAccess()
	resolver, err := config.NewFileResolver(files, logger)
	if err != nil {
		return nil, err
	}
	return &Host{Files: files, Config: resolver, Engine: eng}, nil
}

// DefaultHost returns the process-wide host used when a caller passes nil.
// It is built on first use and never changes afterwards.
var DefaultHost = sync.OnceValue(func() *Host {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	h, err := NewHost(engine.Select(wd, engine.LocalPeer, nil), nil)
	if err != nil {
		// The options schema is embedded, so this only fails on a broken build.
		panic(err)
	}
	return h
})

// PrettifyFile rewrites path in place with its formatted content. The file is
// read exactly once and written exactly once, and only when every earlier
// step succeeded. A nil host selects DefaultHost.
func PrettifyFile(ctx context.Context, path string, host RewriteHost) error {
	if host == nil {
		host = DefaultHost()
	}

	opts, source, err := load(ctx, path, host)
	if err != nil {
		return err
	}

	formatted, err := host.Format(path, source, opts)
	if err != nil {
		return &FormatFailureError{Path: path, Wrapped: err}
	}

	if err = host.WriteFile(path, formatted); err != nil {
		return &WriteFailureError{Path: path, Wrapped: err}
	}
	return nil
}

// CheckFile reports whether path already matches its formatted form. It never
// writes. A nil host selects DefaultHost.
func CheckFile(ctx context.Context, path string, host CheckHost) (bool, error) {
	if host == nil {
		host = DefaultHost()
	}

	opts, source, err := load(ctx, path, host)
	if err != nil {
		return false, err
	}

	ok, err := host.Check(path, source, opts)
	if err != nil {
		return false, &CheckFailureError{Path: path, Wrapped: err}
	}
	return ok, nil
}

type loader interface {
	FileReader
	config.Resolver
}

func load(ctx context.Context, path string, host loader) (config.Options, string, error) {
	resolved, err := host.ResolveConfig(ctx, path)
	if err != nil {
		return nil, "", &ConfigResolutionError{Path: path, Wrapped: err}
	}
	opts := config.Merge(config.Defaults(), resolved)

	source, err := host.ReadFile(path)
	if err != nil {
		return nil, "", &ReadFailureError{Path: path, Wrapped: err}
	}
	return opts, source, nil
}
