package app

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andyballingall/kvikk-fix/internal/fs"
	"github.com/andyballingall/kvikk-fix/internal/project"
	"github.com/andyballingall/kvikk-fix/internal/runner"
)

type rootFixture struct {
	mgr       *MockManager
	logLevel  *slog.LevelVar
	status    runner.Status
	engineDir string
	stdout    bytes.Buffer
	stderr    bytes.Buffer
	cmd       *cobra.Command
}

func newRootFixture(env fs.EnvProvider, args ...string) *rootFixture {
	f := &rootFixture{mgr: &MockManager{}, logLevel: &slog.LevelVar{}}
	if env == nil {
		env = fs.MapEnvProvider{}
	}
	f.cmd = NewRootCmd(mockFactory(f.mgr, &f.engineDir), f.logLevel, env, &f.status)
	f.cmd.SetOut(&f.stdout)
	f.cmd.SetErr(&f.stderr)
	f.cmd.SetArgs(args)
	return f
}

func hasFiles(want ...string) any {
	return mock.MatchedBy(func(r Request) bool { return slices.Equal(r.Files, want) })
}

func slashJoin(elem ...string) string {
	return filepath.ToSlash(filepath.Join(elem...))
}

func TestRootCmd(t *testing.T) {
	t.Parallel()

	t.Run("execute help", func(t *testing.T) {
		t.Parallel()
		f := newRootFixture(nil, "--help")
		require.NoError(t, f.cmd.Execute())
		assert.Contains(t, f.stdout.String(), "kvikk-fix formats every source file")
		assert.Contains(t, f.stdout.String(), "--list-different")
		assert.NotContains(t, f.stdout.String(), "nocolor")
		f.mgr.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})

	t.Run("version flag", func(t *testing.T) {
		t.Parallel()
		f := newRootFixture(nil, "--version")
		require.NoError(t, f.cmd.Execute())
		assert.Contains(t, f.stdout.String(), Version)
		f.mgr.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})

	t.Run("unknown flags are usage errors", func(t *testing.T) {
		t.Parallel()
		for _, args := range [][]string{
			{"--frobnicate"},
			{"-x", "a.ts"},
			{"--output", "yaml"},
			{"--project", ""},
		} {
			f := newRootFixture(nil, args...)
			err := f.cmd.Execute()
			var ue *UsageError
			require.ErrorAs(t, err, &ue, "args %v", args)
			f.mgr.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
		}
	})

	t.Run("explicit files are rewritten", func(t *testing.T) {
		t.Parallel()
		f := newRootFixture(nil, "src/a.ts", "src/b.ts")
		f.mgr.On("Run", mock.Anything, mock.MatchedBy(func(r Request) bool {
			return r.Mode == runner.ModeRewrite && r.Format == "text" && !r.UseColour &&
				slices.Equal(r.Files, []string{"src/a.ts", "src/b.ts"})
		})).Return(runner.StatusClean, nil)

		require.NoError(t, f.cmd.Execute())
		assert.Equal(t, runner.StatusClean, f.status)
		assert.Equal(t, ".", f.engineDir)
		f.mgr.AssertExpectations(t)
		f.mgr.AssertNotCalled(t, "Watch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("list different selects check mode", func(t *testing.T) {
		t.Parallel()
		f := newRootFixture(nil, "-l", "a.ts")
		f.mgr.On("Run", mock.Anything, mock.MatchedBy(func(r Request) bool {
			return r.Mode == runner.ModeCheck
		})).Return(runner.StatusNonConforming, nil)

		require.NoError(t, f.cmd.Execute())
		assert.Equal(t, runner.StatusNonConforming, f.status)
		f.mgr.AssertExpectations(t)
	})

	t.Run("output, verbose and colour flags reach the request", func(t *testing.T) {
		t.Parallel()
		f := newRootFixture(nil, "-o", "json", "--verbose", "--nocolor", "a.ts")
		f.mgr.On("Run", mock.Anything, mock.MatchedBy(func(r Request) bool {
			return r.Format == "json" && r.Verbose && !r.UseColour
		})).Return(runner.StatusClean, nil)

		require.NoError(t, f.cmd.Execute())
		f.mgr.AssertExpectations(t)
	})

	t.Run("alternate colour spellings", func(t *testing.T) {
		t.Parallel()
		for _, variant := range []string{"--nocolour", "-c", "--noColor", "--noColour"} {
			f := newRootFixture(nil, variant, "a.ts")
			f.mgr.On("Run", mock.Anything, mock.Anything).Return(runner.StatusClean, nil)
			require.NoError(t, f.cmd.Execute(), "Flag %s should be recognised", variant)
		}
	})

	t.Run("debug flag", func(t *testing.T) {
		t.Parallel()
		f := newRootFixture(nil, "--debug", "a.ts")
		f.mgr.On("Run", mock.Anything, mock.Anything).Return(runner.StatusClean, nil)
		require.NoError(t, f.cmd.Execute())
		assert.Equal(t, slog.LevelDebug, f.logLevel.Level())
	})

	t.Run("project flag enumerates the manifest", func(t *testing.T) {
		t.Parallel()
		dir := writeProject(t, map[string]string{
			"tsconfig.json": testManifest,
			"src/a.ts":      "export const a = 1;\n",
			"src/b.ts":      "export const b = 2;\n",
			"other/c.ts":    "export const c = 3;\n",
		})
		manifest := filepath.Join(dir, "tsconfig.json")
		f := newRootFixture(nil, "-p", manifest)
		f.mgr.On("Run", mock.Anything,
			hasFiles(slashJoin(dir, "src", "a.ts"), slashJoin(dir, "src", "b.ts"))).
			Return(runner.StatusClean, nil)

		require.NoError(t, f.cmd.Execute())
		assert.Equal(t, dir, f.engineDir)
		f.mgr.AssertExpectations(t)
	})

	t.Run("project from environment", func(t *testing.T) {
		t.Parallel()
		dir := writeProject(t, map[string]string{
			"tsconfig.json": `{"files": ["main.ts"]}`,
			"main.ts":       "main();\n",
		})
		env := fs.MapEnvProvider{ProjectEnvVar: filepath.Join(dir, "tsconfig.json")}
		f := newRootFixture(env)
		f.mgr.On("Run", mock.Anything, hasFiles(slashJoin(dir, "main.ts"))).Return(runner.StatusClean, nil)

		require.NoError(t, f.cmd.Execute())
		f.mgr.AssertExpectations(t)
	})

	t.Run("manifest errors are fatal", func(t *testing.T) {
		t.Parallel()
		dir := writeProject(t, map[string]string{"tsconfig.json": `{"include": [`})

		for _, manifest := range []string{
			filepath.Join(dir, "tsconfig.json"),
			filepath.Join(dir, "missing.json"),
		} {
			f := newRootFixture(nil, "-p", manifest)
			err := f.cmd.Execute()
			var me *project.ManifestError
			require.ErrorAs(t, err, &me)
			f.mgr.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
		}
	})

	t.Run("a manifest matching nothing is fatal", func(t *testing.T) {
		t.Parallel()
		dir := writeProject(t, map[string]string{"tsconfig.json": `{"include": ["src"]}`})
		f := newRootFixture(nil, "-p", filepath.Join(dir, "tsconfig.json"))
		err := f.cmd.Execute()
		var ni *project.NoInputsError
		require.ErrorAs(t, err, &ni)
	})

	t.Run("watch runs the batch first", func(t *testing.T) {
		t.Parallel()
		f := newRootFixture(nil, "-w", "a.ts")
		f.mgr.On("Run", mock.Anything, mock.Anything).Return(runner.StatusNonConforming, nil).Once()
		f.mgr.On("Watch", mock.Anything, hasFiles("a.ts"), mock.Anything).Return(nil).Once()

		require.NoError(t, f.cmd.Execute())
		assert.Equal(t, runner.StatusNonConforming, f.status)
		f.mgr.AssertExpectations(t)
	})

	t.Run("manager errors are returned", func(t *testing.T) {
		t.Parallel()
		f := newRootFixture(nil, "-w", "a.ts")
		f.mgr.On("Run", mock.Anything, mock.Anything).Return(runner.StatusClean, assert.AnError)

		require.ErrorIs(t, f.cmd.Execute(), assert.AnError)
		f.mgr.AssertNotCalled(t, "Watch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("factory errors are returned", func(t *testing.T) {
		t.Parallel()
		factory := func(*slog.Logger, string, io.Writer, io.Writer) (Manager, error) {
			return nil, assert.AnError
		}
		cmd := NewRootCmd(factory, &slog.LevelVar{}, fs.MapEnvProvider{}, nil)
		cmd.SetArgs([]string{"a.ts"})
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		require.ErrorIs(t, cmd.Execute(), assert.AnError)
	})
}

func TestUsageError(t *testing.T) {
	t.Parallel()

	err := &UsageError{Wrapped: errors.New("unknown flag: --frobnicate")}
	assert.Equal(t, "unknown flag: --frobnicate\nRun 'kvikk-fix --help' for usage.", err.Error())
	assert.EqualError(t, errors.Unwrap(err), "unknown flag: --frobnicate")
}

func TestNewManager(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, map[string]string{"a.ts": "const  a  =  1 ;\n"})
	var stderr bytes.Buffer
	mgr, err := NewManager(nil, dir, io.Discard, &stderr)
	require.NoError(t, err)
	require.NotNil(t, mgr)
}

func TestDefaultProject(t *testing.T) {
	t.Parallel()

	assert.Equal(t, project.DefaultConfigFile, defaultProject(fs.MapEnvProvider{}))
	assert.Equal(t, "web/tsconfig.json", defaultProject(fs.MapEnvProvider{ProjectEnvVar: "web/tsconfig.json"}))
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, isTerminal(&bytes.Buffer{}))
}
