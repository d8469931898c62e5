package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/andyballingall/kvikk-fix/internal/engine"
	"github.com/andyballingall/kvikk-fix/internal/fs"
	"github.com/andyballingall/kvikk-fix/internal/pipeline"
	"github.com/andyballingall/kvikk-fix/internal/project"
	"github.com/andyballingall/kvikk-fix/internal/runner"
)

// Version is the current version of kvikk-fix, set at build time.
var Version = "dev"

var LongDescription = `
kvikk-fix formats every source file of a TypeScript project in place, or with
--list-different reports the files that are not formatted yet.

Files are taken from the trailing arguments when given, otherwise from the
project manifest (tsconfig.json). Formatting options are resolved per file from
the nearest .prettierrc or package.json "prettier" section. A prettier install
in the project's node_modules is used when present, otherwise the built-in
formatter.

Exit codes:
  0  every file is formatted
  1  usage error or unusable project manifest
  2  at least one file could not be processed
  3  at least one file is not formatted (--list-different only)`

// ManagerFactory builds the Manager for a run once the directory used for
// engine discovery is known.
type ManagerFactory func(logger *slog.Logger, engineDir string, stdout, stderr io.Writer) (Manager, error)

// NewManager is the ManagerFactory used by the CLI: it selects the engine once
// and runs every file through a host on the real file system.
func NewManager(logger *slog.Logger, engineDir string, stdout, stderr io.Writer) (Manager, error) {
	eng := engine.Select(engineDir, engine.LocalPeer, logger)
	host, err := pipeline.NewHost(eng, logger)
	if err != nil {
		return nil, fmt.Errorf("formatting host initialisation failed: %w", err)
	}
	r := runner.New(runner.HostPipeline{Host: host}, logger)
	return NewCLIManager(logger, r, host.Files, stdout, stderr), nil
}

// NewRootCmd creates the root command and wires up dependencies. The status of
// the batch run is stored in status.
func NewRootCmd(newManager ManagerFactory, ll *slog.LevelVar, env fs.EnvProvider, status *runner.Status) *cobra.Command {
	var debug bool
	var noColour bool
	var listDifferent bool
	var watchMode bool
	var verbose bool

	if newManager == nil {
		newManager = NewManager
	}
	if env == nil {
		env = fs.NewEnvProvider()
	}

	projectVal := pathValue(defaultProject(env))
	outputVal := formatValue("text")

	rootCmd := &cobra.Command{
		Use:           "kvikk-fix [flags] [file...]",
		Short:         "Format the source files of a TypeScript project",
		Long:          LongDescription,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		Example: `
  kvikk-fix                          rewrite every file of ./tsconfig.json
  kvikk-fix -l                       list the files that need formatting
  kvikk-fix -p web/tsconfig.json -l  use another project manifest
  kvikk-fix src/a.ts src/b.ts        rewrite only the named files
  kvikk-fix -w                       rewrite, then keep watching for changes`,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if debug {
			ll.Set(slog.LevelDebug)
		}

		stderr := cmd.ErrOrStderr()
		logger, closer, err := setupLogger(stderr, ll, env)
		if err != nil {
			logger.Warn("logging to file disabled", "error", err)
		}
		if closer != nil {
			defer closer.Close()
		}

		files, engineDir, err := resolveFiles(args, string(projectVal), logger)
		if err != nil {
			return err
		}

		mgr, err := newManager(logger, engineDir, cmd.OutOrStdout(), stderr)
		if err != nil {
			return err
		}

		mode := runner.ModeRewrite
		if listDifferent {
			mode = runner.ModeCheck
		}
		base, _ := os.Getwd()
		req := Request{
			Files:     files,
			Mode:      mode,
			Format:    string(outputVal),
			Verbose:   verbose,
			UseColour: !noColour && isTerminal(stderr),
			Base:      base,
		}

		st, err := mgr.Run(cmd.Context(), req)
		if status != nil {
			*status = st
		}
		if err != nil || !watchMode {
			return err
		}
		return mgr.Watch(cmd.Context(), req, nil)
	}

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Wrapped: err}
	})

	flags := rootCmd.Flags()
	flags.BoolVarP(&listDifferent, "list-different", "l", false,
		"Check files without writing them and list those that are not formatted")
	flags.VarP(&projectVal, "project", "p",
		fmt.Sprintf("Project manifest used when no files are given (env %s)", ProjectEnvVar))
	flags.BoolVarP(&watchMode, "watch", "w", false, "Keep running and process files again as they change")
	flags.VarP(&outputVal, "output", "o", "Output format (text, json)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Print a summary line after the report")
	flags.BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	flags.BoolVarP(&noColour, "nocolour", "c", false, "Disable colour in output")
	// Support alternate spellings
	flags.BoolVar(&noColour, "nocolor", false, "")
	flags.BoolVar(&noColour, "noColor", false, "")
	flags.BoolVar(&noColour, "noColour", false, "")
	_ = flags.MarkHidden("nocolor")
	_ = flags.MarkHidden("noColor")
	_ = flags.MarkHidden("noColour")

	return rootCmd
}

// resolveFiles returns the files to process and the directory the engine is
// discovered from. Explicit arguments win over the project manifest.
func resolveFiles(args []string, manifest string, logger *slog.Logger) ([]string, string, error) {
	if len(args) > 0 {
		logger.Debug("using explicit file list", "files", len(args))
		return args, ".", nil
	}

	opts := project.DefaultOptions()
	opts.ConfigFile = manifest
	files, err := opts.FileNames()
	if err != nil {
		return nil, "", err
	}
	logger.Debug("enumerated project", "manifest", manifest, "files", len(files))
	return files, filepath.Dir(manifest), nil
}

func defaultProject(env fs.EnvProvider) string {
	if p := env.Get(ProjectEnvVar); p != "" {
		return p
	}
	return project.DefaultConfigFile
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
