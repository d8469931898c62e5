package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andyballingall/kvikk-fix/internal/config"
	"github.com/andyballingall/kvikk-fix/internal/engine"
	"github.com/andyballingall/kvikk-fix/internal/fs"
	"github.com/andyballingall/kvikk-fix/internal/pipeline"
	"github.com/andyballingall/kvikk-fix/internal/runner"
)

type managerFixture struct {
	mgr    *CLIManager
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newManagerFixture(t *testing.T, files fs.FileAccess) *managerFixture {
	t.Helper()
	resolver, err := config.NewFileResolver(files, nil)
	require.NoError(t, err)
	host := &pipeline.Host{Files: files, Config: resolver, Engine: engine.NewBundled()}

	f := &managerFixture{}
	f.mgr = NewCLIManager(nil, runner.New(runner.HostPipeline{Host: host}, nil), files, &f.stdout, &f.stderr)
	return f
}

func TestCLIManager_Run(t *testing.T) {
	t.Parallel()

	a := filepath.FromSlash("/proj/src/a.ts")
	b := filepath.FromSlash("/proj/src/b.ts")
	missing := filepath.FromSlash("/proj/src/missing.ts")

	t.Run("rewrite mode formats in place", func(t *testing.T) {
		t.Parallel()
		mem := fs.NewMemFileAccess(map[string]string{a: "const x  =  1;\n", b: "b;\n"})
		f := newManagerFixture(t, mem)

		st, err := f.mgr.Run(context.Background(), Request{Files: []string{a, b}, Mode: runner.ModeRewrite})
		require.NoError(t, err)
		assert.Equal(t, runner.StatusClean, st)

		got, _ := mem.Content(a)
		assert.Equal(t, "const x = 1;\n", got)
		assert.Empty(t, f.stderr.String())
		assert.Empty(t, f.stdout.String())
	})

	t.Run("check mode lists non-conforming files", func(t *testing.T) {
		t.Parallel()
		mem := fs.NewMemFileAccess(map[string]string{a: "const x  =  1;\n", b: "b;\n"})
		f := newManagerFixture(t, mem)

		st, err := f.mgr.Run(context.Background(), Request{Files: []string{a, b}, Mode: runner.ModeCheck})
		require.NoError(t, err)
		assert.Equal(t, runner.StatusNonConforming, st)
		assert.Equal(t, a+"\n", f.stderr.String())
		assert.Equal(t, 0, mem.Writes(a))
	})

	t.Run("failures are reported and outrank non-conformance", func(t *testing.T) {
		t.Parallel()
		mem := fs.NewMemFileAccess(map[string]string{a: "const x  =  1;\n"})
		f := newManagerFixture(t, mem)

		st, err := f.mgr.Run(context.Background(), Request{Files: []string{missing, a}, Mode: runner.ModeCheck})
		require.NoError(t, err)
		assert.Equal(t, runner.StatusError, st)
		assert.Contains(t, f.stderr.String(), missing+": \ncould not read file")
		assert.Contains(t, f.stderr.String(), "\n\n"+a+"\n")
	})

	t.Run("json goes to stdout", func(t *testing.T) {
		t.Parallel()
		mem := fs.NewMemFileAccess(map[string]string{a: "a;\n"})
		f := newManagerFixture(t, mem)

		st, err := f.mgr.Run(context.Background(), Request{Files: []string{a}, Mode: runner.ModeCheck, Format: "json"})
		require.NoError(t, err)
		assert.Equal(t, runner.StatusClean, st)
		assert.Empty(t, f.stderr.String())

		var out map[string]any
		require.NoError(t, json.Unmarshal(f.stdout.Bytes(), &out))
		assert.Equal(t, "clean", out["status"])
	})

	t.Run("a cancelled context does not cut the batch short", func(t *testing.T) {
		t.Parallel()
		mem := fs.NewMemFileAccess(map[string]string{a: "a ;\n", b: "b ;\n"})
		f := newManagerFixture(t, mem)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		st, err := f.mgr.Run(ctx, Request{Files: []string{a, b}, Mode: runner.ModeRewrite})
		require.NoError(t, err)
		assert.Equal(t, runner.StatusClean, st)
		assert.Equal(t, 1, mem.Writes(b))
	})
}

func TestCLIManager_Watch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(file, []byte("a;\n"), 0o600))

	f := newManagerFixture(t, fs.NewOSFileAccess())

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- f.mgr.Watch(ctx, Request{Files: []string{file}, Mode: runner.ModeRewrite}, ready)
	}()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not become ready in time")
	}

	require.NoError(t, os.WriteFile(file, []byte("foo( a , b );\n"), 0o600))

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(file)
		return err == nil && string(data) == "foo(a, b);\n"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
