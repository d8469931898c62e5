// Package watch reruns the formatter on project files as they change.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/andyballingall/kvikk-fix/internal/fs"
)

// DefaultDebounce is how long a file must stay quiet before its callback runs.
const DefaultDebounce = 100 * time.Millisecond

// eventSource is the part of fsnotify.Watcher the Watcher uses.
type eventSource interface {
	Add(name string) error
	Close() error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
}

type fsnotifySource struct {
	w *fsnotify.Watcher
}

func newFSNotifySource() (eventSource, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &fsnotifySource{w: w}, nil
}

func (s *fsnotifySource) Add(name string) error         { return s.w.Add(name) }
func (s *fsnotifySource) Close() error                  { return s.w.Close() }
func (s *fsnotifySource) Events() <-chan fsnotify.Event { return s.w.Events }
func (s *fsnotifySource) Errors() <-chan error          { return s.w.Errors }

// Watcher monitors a fixed set of project files. Files outside the set are
// ignored, including new files in the watched directories.
type Watcher struct {
	files    fs.FileAccess
	logger   *slog.Logger
	Ready    chan struct{}
	Debounce time.Duration

	paths   map[string]string // canonical path to the path given by the caller
	settled map[string]string // content left behind by the last callback

	newSource func() (eventSource, error)
}

// New creates a Watcher for paths. files is used to tell a real edit apart
// from the write a rewrite callback makes itself.
func New(paths []string, files fs.FileAccess, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &Watcher{
		files:     files,
		logger:    logger.With("component", "watcher"),
		Ready:     make(chan struct{}),
		Debounce:  DefaultDebounce,
		paths:     make(map[string]string, len(paths)),
		settled:   make(map[string]string),
		newSource: newFSNotifySource,
	}
	for _, p := range paths {
		w.paths[canonical(p)] = p
	}
	return w
}

// Watch blocks until ctx is cancelled, calling callback once per changed file
// after it has been quiet for the debounce interval. Callbacks run one at a
// time on the calling goroutine.
func (w *Watcher) Watch(ctx context.Context, callback func(path string)) error {
	src, err := w.newSource()
	if err != nil {
		return err
	}
	defer src.Close()

	for _, dir := range w.dirs() {
		if err := src.Add(dir); err != nil {
			return err
		}
	}

	w.logger.Info("Watching for changes", "files", len(w.paths))
	if w.Ready != nil {
		close(w.Ready)
	}

	pending := make(map[string]bool)
	timer := time.NewTimer(w.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-src.Errors():
			w.logger.Error("Watcher error", "error", err)
		case event, ok := <-src.Events():
			if !ok {
				return nil
			}
			if p, relevant := w.handleEvent(event); relevant {
				pending[p] = true
				timer.Reset(w.Debounce)
			}
		case <-timer.C:
			w.flush(pending, callback)
			clear(pending)
		}
	}
}

func (w *Watcher) flush(pending map[string]bool, callback func(string)) {
	keys := make([]string, 0, len(pending))
	for p := range pending {
		keys = append(keys, p)
	}
	slices.Sort(keys)

	for _, p := range keys {
		before, err := w.files.ReadFile(p)
		if err == nil {
			if last, seen := w.settled[p]; seen && last == before {
				w.logger.Debug("ignoring unchanged file", "file", p)
				continue
			}
		}
		callback(p)
		if after, rErr := w.files.ReadFile(p); rErr == nil {
			w.settled[p] = after
		} else {
			delete(w.settled, p)
		}
	}
}

// handleEvent returns the caller's path for a write or create of a watched file.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return "", false
	}
	p, ok := w.paths[canonical(event.Name)]
	return p, ok
}

func (w *Watcher) dirs() []string {
	var dirs []string
	for c := range w.paths {
		dir := filepath.Dir(c)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	slices.Sort(dirs)
	return dirs
}

// canonical resolves symlinks where it can so that event names and project
// paths compare equal.
func canonical(p string) string {
	if c, err := fs.CanonicalPath(filepath.FromSlash(p)); err == nil {
		return c
	}
	if a, err := fs.Abs(filepath.FromSlash(p)); err == nil {
		return a
	}
	return p
}
