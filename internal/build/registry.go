package build

import (
	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/okra-platform/genpipe/internal/codegen/golang"
	"github.com/okra-platform/genpipe/internal/config"
	"github.com/okra-platform/genpipe/internal/postprocess"
	"github.com/okra-platform/genpipe/internal/provider"
	"github.com/rs/zerolog"
)

// Settings are the per-configuration values the built-in plugins are
// constructed with
type Settings struct {
	Name       string
	Version    string
	OutputDir  string
	Package    string
	Extension  string
	LineEnding postprocess.LineEnding
}

// SettingsFor derives plugin settings from a configuration
func SettingsFor(rc config.RunConfig, version string) (Settings, error) {
	le, err := postprocess.ParseLineEnding(rc.LineEnding)
	if err != nil {
		return Settings{}, errors.Mark(errors.Wrapf(err, "configuration %q", rc.Name), config.ErrConfiguration)
	}
	return Settings{
		Name:       rc.Name,
		Version:    version,
		OutputDir:  rc.OutputDir,
		Package:    rc.Package,
		Extension:  rc.FileExtension,
		LineEnding: le,
	}, nil
}

// NewRegistry returns a registry holding every built-in plugin, constructed
// for one configuration
func NewRegistry(s Settings, logger zerolog.Logger) (*codegen.Registry, error) {
	opts := golang.Options{Package: s.Package, Extension: s.Extension}

	builtins := []codegen.Plugin{
		provider.NewValidateDescriptors(),
		provider.NewKeyedFactoryData(),
		provider.NewEnumKeyedFactoryData(),

		golang.NewFactoryIndex(opts),
		golang.NewKeyedFactory(opts),
		golang.NewEnumKeyedFactory(opts),
		golang.NewTypeNameTable(opts, logger),

		postprocess.NewAddFileHeader(s.Version),
		postprocess.NewCleanTargetDirectory(s.OutputDir, s.Extension, logger),
		postprocess.NewConvertLineEndings(s.LineEnding),
		postprocess.NewMergeFilesByName(),
		postprocess.NewWriteToDisk(s.OutputDir, logger),
	}

	reg := codegen.NewRegistry()
	for _, p := range builtins {
		if err := reg.Register(p); err != nil {
			return nil, errors.Wrapf(err, "failed to register %s", p.Descriptor().Name)
		}
	}
	return reg, nil
}
