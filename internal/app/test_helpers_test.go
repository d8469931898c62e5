package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andyballingall/kvikk-fix/internal/runner"
)

const testManifest = `{
  // comments are allowed
  "compilerOptions": { "strict": true },
  "include": ["src"]
}`

type MockManager struct {
	mock.Mock
}

func (m *MockManager) Run(ctx context.Context, req Request) (runner.Status, error) {
	args := m.Called(ctx, req)
	st, _ := args.Get(0).(runner.Status)
	return st, args.Error(1)
}

func (m *MockManager) Watch(ctx context.Context, req Request, readyChan chan<- struct{}) error {
	args := m.Called(ctx, req, readyChan)
	return args.Error(0)
}

// mockFactory returns a ManagerFactory that always hands out mgr and records
// the engine directory it was asked for.
func mockFactory(mgr Manager, engineDir *string) ManagerFactory {
	return func(_ *slog.Logger, dir string, _, _ io.Writer) (Manager, error) {
		if engineDir != nil {
			*engineDir = dir
		}
		return mgr, nil
	}
}

// writeProject lays out files relative to a new temporary directory and
// returns that directory.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return dir
}
