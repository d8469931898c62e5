package config

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/andyballingall/kvikk-fix/internal/fs"
	"github.com/andyballingall/kvikk-fix/internal/validator"
)

// Resolver produces the project or file-local formatting options for a path.
type Resolver interface {
	// ResolveConfig returns nil, nil when no configuration applies to path.
	// Malformed configuration is reported as an error.
	ResolveConfig(ctx context.Context, path string) (Options, error)
}

// PackageJSONFile is searched for a "prettier" key before any rc file.
const PackageJSONFile = "package.json"

// SearchPlaces lists the files checked in each directory, in order.
var SearchPlaces = []string{
	PackageJSONFile,
	".prettierrc",
	".prettierrc.json",
	".prettierrc.yaml",
	".prettierrc.yml",
	".prettierrc.toml",
}

// FileResolver finds configuration by walking up from a file's directory.
// Nothing is cached: every call reads the configuration files afresh.
type FileResolver struct {
	files     fs.FileAccess
	validator validator.Validator
	logger    *slog.Logger
}

// NewFileResolver creates a FileResolver reading through files.
func NewFileResolver(files fs.FileAccess, logger *slog.Logger) (*FileResolver, error) {
	v, err := NewOptionsValidator(validator.NewSanthoshCompiler())
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileResolver{
		files:     files,
		validator: v,
		logger:    logger.With("component", "config"),
	}, nil
}

func (r *FileResolver) ResolveConfig(ctx context.Context, path string) (Options, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := fs.Abs(path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(abs)
	for {
		for _, name := range SearchPlaces {
			cfgPath := filepath.Join(dir, name)
			raw, found, lErr := r.load(cfgPath)
			if lErr != nil {
				return nil, lErr
			}
			if !found {
				continue
			}

			opts, aErr := applyOverrides(cfgPath, raw, abs)
			if aErr != nil {
				return nil, aErr
			}
			r.logger.Debug("resolved formatting config", "file", path, "source", cfgPath)
			return opts, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	r.logger.Debug("no formatting config found", "file", path)
	return nil, nil
}

// load reads one candidate. found is false when the file is absent, empty,
// or is a package.json without a "prettier" key.
func (r *FileResolver) load(cfgPath string) (map[string]any, bool, error) {
	data, err := r.files.ReadFile(cfgPath)
	if err != nil {
		var nf *fs.NotFoundError
		if errors.As(err, &nf) {
			return nil, false, nil
		}
		return nil, false, &InvalidConfigFileError{Path: cfgPath, Wrapped: err}
	}

	var raw any
	switch name := filepath.Base(cfgPath); {
	case name == PackageJSONFile:
		if !gjson.Valid(data) {
			return nil, false, &InvalidConfigFileError{Path: cfgPath, Wrapped: errors.New("invalid JSON")}
		}
		res := gjson.Get(data, "prettier")
		if !res.Exists() {
			return nil, false, nil
		}
		if res.Type == gjson.String {
			return nil, false, &UnsupportedConfigError{
				Path:   cfgPath,
				Reason: "shared configuration reference " + res.Str + " cannot be loaded",
			}
		}
		raw = res.Value()
	case strings.TrimSpace(data) == "":
		return nil, false, nil
	case strings.HasSuffix(name, ".json"):
		if !gjson.Valid(data) {
			return nil, false, &InvalidConfigFileError{Path: cfgPath, Wrapped: errors.New("invalid JSON")}
		}
		raw = gjson.Parse(data).Value()
	case strings.HasSuffix(name, ".toml"):
		var doc map[string]any
		if _, dErr := toml.Decode(data, &doc); dErr != nil {
			return nil, false, &InvalidConfigFileError{Path: cfgPath, Wrapped: dErr}
		}
		raw = doc
	default:
		// .prettierrc may hold JSON or YAML; YAML accepts both.
		var doc any
		if uErr := yaml.Unmarshal([]byte(data), &doc); uErr != nil {
			return nil, false, &InvalidConfigFileError{Path: cfgPath, Wrapped: uErr}
		}
		raw = doc
	}

	doc, err := validator.ToDocument(raw)
	if err != nil {
		return nil, false, &InvalidConfigFileError{Path: cfgPath, Wrapped: err}
	}
	if vErr := r.validator.Validate(doc); vErr != nil {
		return nil, false, &InvalidOptionsError{Path: cfgPath, Wrapped: vErr}
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, false, &InvalidOptionsError{Path: cfgPath, Wrapped: errors.New("configuration must be an object")}
	}
	return obj, true, nil
}
