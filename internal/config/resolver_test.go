package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andyballingall/kvikk-fix/internal/fs"
)

func newTestResolver(t *testing.T, files map[string]string) *FileResolver {
	t.Helper()
	r, err := NewFileResolver(fs.NewMemFileAccess(files), nil)
	require.NoError(t, err)
	return r
}

func TestFileResolver_ResolveConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   map[string]string
		path    string
		want    Options
		wantErr any
	}{
		{
			name: "no configuration found",
			files: map[string]string{
				"/proj/src/a.ts": "",
			},
			path: "/proj/src/a.ts",
			want: nil,
		},
		{
			name: "json prettierrc in parent directory",
			files: map[string]string{
				"/proj/.prettierrc.json": `{"semi": true, "tabWidth": 2}`,
			},
			path: "/proj/src/deep/a.ts",
			want: Options{"semi": true, "tabWidth": json.Number("2")},
		},
		{
			name: "yaml prettierrc",
			files: map[string]string{
				"/proj/.prettierrc": "singleQuote: true\ntrailingComma: all\n",
			},
			path: "/proj/a.ts",
			want: Options{"singleQuote": true, "trailingComma": "all"},
		},
		{
			name: "json content in extensionless prettierrc",
			files: map[string]string{
				"/proj/.prettierrc": `{"useTabs": true}`,
			},
			path: "/proj/a.ts",
			want: Options{"useTabs": true},
		},
		{
			name: "toml prettierrc",
			files: map[string]string{
				"/proj/.prettierrc.toml": "printWidth = 100\nsemi = false\n",
			},
			path: "/proj/a.ts",
			want: Options{"printWidth": json.Number("100"), "semi": false},
		},
		{
			name: "package.json prettier key wins over rc file in same directory",
			files: map[string]string{
				"/proj/package.json": `{"name": "x", "prettier": {"semi": false}}`,
				"/proj/.prettierrc":  "semi: true\n",
			},
			path: "/proj/a.ts",
			want: Options{"semi": false},
		},
		{
			name: "package.json without prettier key is skipped",
			files: map[string]string{
				"/proj/package.json": `{"name": "x"}`,
				"/proj/.prettierrc":  "semi: true\n",
			},
			path: "/proj/a.ts",
			want: Options{"semi": true},
		},
		{
			name: "nearest directory wins",
			files: map[string]string{
				"/proj/.prettierrc":     "semi: true\n",
				"/proj/sub/.prettierrc": "semi: false\n",
			},
			path: "/proj/sub/a.ts",
			want: Options{"semi": false},
		},
		{
			name: "empty rc file is skipped",
			files: map[string]string{
				"/proj/sub/.prettierrc": "  \n",
				"/proj/.prettierrc":     "semi: true\n",
			},
			path: "/proj/sub/a.ts",
			want: Options{"semi": true},
		},
		{
			name: "overrides apply by base name",
			files: map[string]string{
				"/proj/.prettierrc.json": `{"semi": true, "overrides": [{"files": "*.test.ts", "options": {"semi": false}}]}`,
			},
			path: "/proj/src/a.test.ts",
			want: Options{"semi": false},
		},
		{
			name: "overrides apply by relative glob",
			files: map[string]string{
				"/proj/.prettierrc.json": `{"tabWidth": 2, "overrides": [{"files": ["legacy/**/*.ts"], "options": {"tabWidth": 4}}]}`,
			},
			path: "/proj/legacy/x/a.ts",
			want: Options{"tabWidth": json.Number("4")},
		},
		{
			name: "excludeFiles suppresses an override",
			files: map[string]string{
				"/proj/.prettierrc.json": `{"semi": true, "overrides": [{"files": "*.ts", "excludeFiles": "keep.ts", "options": {"semi": false}}]}`,
			},
			path: "/proj/keep.ts",
			want: Options{"semi": true},
		},
		{
			name: "non-matching override is ignored",
			files: map[string]string{
				"/proj/.prettierrc.json": `{"semi": true, "overrides": [{"files": "*.js", "options": {"semi": false}}]}`,
			},
			path: "/proj/a.ts",
			want: Options{"semi": true},
		},
		{
			name: "invalid json",
			files: map[string]string{
				"/proj/.prettierrc.json": `{"semi": `,
			},
			path:    "/proj/a.ts",
			wantErr: &InvalidConfigFileError{},
		},
		{
			name: "invalid package.json",
			files: map[string]string{
				"/proj/package.json": `{`,
			},
			path:    "/proj/a.ts",
			wantErr: &InvalidConfigFileError{},
		},
		{
			name: "invalid yaml",
			files: map[string]string{
				"/proj/.prettierrc": "invalid: yaml: :",
			},
			path:    "/proj/a.ts",
			wantErr: &InvalidConfigFileError{},
		},
		{
			name: "invalid toml",
			files: map[string]string{
				"/proj/.prettierrc.toml": "semi = = true",
			},
			path:    "/proj/a.ts",
			wantErr: &InvalidConfigFileError{},
		},
		{
			name: "option of the wrong type",
			files: map[string]string{
				"/proj/.prettierrc": "tabWidth: two\n",
			},
			path:    "/proj/a.ts",
			wantErr: &InvalidOptionsError{},
		},
		{
			name: "unknown enum value",
			files: map[string]string{
				"/proj/.prettierrc": "trailingComma: sometimes\n",
			},
			path:    "/proj/a.ts",
			wantErr: &InvalidOptionsError{},
		},
		{
			name: "override without files",
			files: map[string]string{
				"/proj/.prettierrc.json": `{"overrides": [{"options": {"semi": false}}]}`,
			},
			path:    "/proj/a.ts",
			wantErr: &InvalidOptionsError{},
		},
		{
			name: "configuration that is not an object",
			files: map[string]string{
				"/proj/.prettierrc": "- semi\n",
			},
			path:    "/proj/a.ts",
			wantErr: &InvalidOptionsError{},
		},
		{
			name: "shared configuration reference",
			files: map[string]string{
				"/proj/package.json": `{"prettier": "@company/prettier-config"}`,
			},
			path:    "/proj/a.ts",
			wantErr: &UnsupportedConfigError{},
		},
		{
			name: "malformed override glob",
			files: map[string]string{
				"/proj/.prettierrc.json": `{"overrides": [{"files": "[", "options": {"semi": false}}]}`,
			},
			path:    "/proj/a.ts",
			wantErr: &InvalidOptionsError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := newTestResolver(t, tt.files)

			got, err := r.ResolveConfig(context.Background(), tt.path)

			switch want := tt.wantErr.(type) {
			case *InvalidConfigFileError:
				require.ErrorAs(t, err, &want)
				return
			case *InvalidOptionsError:
				require.ErrorAs(t, err, &want)
				return
			case *UnsupportedConfigError:
				require.ErrorAs(t, err, &want)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileResolver_CancelledContext(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ResolveConfig(ctx, "/proj/a.ts")
	require.ErrorIs(t, err, context.Canceled)
}

func TestFileResolver_OSFileSystem(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".prettierrc.yml"), []byte("bracketSpacing: false\n"), 0o600))

	r, err := NewFileResolver(fs.NewOSFileAccess(), nil)
	require.NoError(t, err)

	got, err := r.ResolveConfig(context.Background(), filepath.Join(root, "src", "a.ts"))
	require.NoError(t, err)
	assert.Equal(t, Options{"bracketSpacing": false}, got)

	t.Run("unreadable candidate is an error", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		// A directory where a config file is expected cannot be read.
		require.NoError(t, os.Mkdir(filepath.Join(dir, ".prettierrc"), 0o755))

		_, rErr := r.ResolveConfig(context.Background(), filepath.Join(dir, "a.ts"))
		var target *InvalidConfigFileError
		require.ErrorAs(t, rErr, &target)
	})
}
