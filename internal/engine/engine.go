// Package engine holds the formatting engines kvikk-fix can drive.
//
// An Engine formats or checks one file's source under a resolved set of
// options. Two implementations exist: Peer, which delegates to a
// project-local prettier executable, and Bundled, a Go-native normalizer
// used when no peer is installed. Select picks one of them once per process.
package engine

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/andyballingall/kvikk-fix/internal/config"
)

// Engine formats and checks source text.
type Engine interface {
	// Name identifies the engine in logs and reports.
	Name() string
	// Format returns source rewritten under opts. path names the file the
	// source came from; engines may use it to infer file-specific behaviour.
	Format(path, source string, opts config.Options) (string, error)
	// Check reports whether source already equals its formatted form.
	Check(path, source string, opts config.Options) (bool, error)
}

// PeerLookup finds a peer engine executable for a project directory.
type PeerLookup func(projectDir string) (string, bool)

// Select resolves the engine for the whole run: a peer found by lookup wins,
// otherwise the bundled engine is used. It is meant to be called once.
func Select(projectDir string, lookup PeerLookup, logger *slog.Logger) Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if lookup != nil {
		if cmd, ok := lookup(projectDir); ok {
			logger.Debug("using peer formatting engine", "command", cmd)
			return NewPeer(cmd)
		}
	}
	logger.Debug("using bundled formatting engine", "projectDir", projectDir)
	return NewBundled()
}

// LocalPeer looks for node_modules/.bin/prettier in projectDir and each of its
// parents, the way node resolves a package from a nested directory.
func LocalPeer(projectDir string) (string, bool) {
	dir, err := filepath.Abs(projectDir)
	if err != nil {
		return "", false
	}

	name := "prettier"
	if runtime.GOOS == "windows" {
		name += ".cmd"
	}

	for {
		candidate := filepath.Join(dir, "node_modules", ".bin", name)
		if info, sErr := os.Stat(candidate); sErr == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
