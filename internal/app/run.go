package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/andyballingall/kvikk-fix/internal/fs"
	"github.com/andyballingall/kvikk-fix/internal/runner"
)

// Run executes the command line in args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, envProvider fs.EnvProvider) int {
	return run(ctx, args, stdout, stderr, envProvider, nil)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, envProvider fs.EnvProvider,
	newManager ManagerFactory,
) int {
	logLevel := &slog.LevelVar{}
	logLevel.Set(slog.LevelInfo)

	if envProvider == nil {
		envProvider = fs.NewEnvProvider()
	}

	var status runner.Status
	rootCmd := NewRootCmd(newManager, logLevel, envProvider, &status)
	rootCmd.SetArgs(args[1:]) // Skip the program name
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return status.ExitCode()
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(stderr, "Interrupted by user")
		return status.ExitCode()
	default:
		// Print error to stderr for script tests and CLI users (SilenceErrors is set)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}
