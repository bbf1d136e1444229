package postprocess

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/rs/zerolog"
)

// WriteToDisk writes every file below the output directory
type WriteToDisk struct {
	outputDir string
	logger    zerolog.Logger
}

// NewWriteToDisk creates the disk writer for outputDir
func NewWriteToDisk(outputDir string, logger zerolog.Logger) *WriteToDisk {
	return &WriteToDisk{
		outputDir: outputDir,
		logger:    logger.With().Str("component", "write").Logger(),
	}
}

func (w *WriteToDisk) Descriptor() codegen.Descriptor {
	return codegen.Descriptor{
		Name:     NameWriteToDisk,
		Role:     codegen.RolePostProcessor,
		Priority: PriorityWriteToDisk,
	}
}

// PostProcess creates parent directories as needed and overwrites each file.
// The first failure aborts the write.
func (w *WriteToDisk) PostProcess(ctx context.Context, files []*codegen.CodeGenFile) ([]*codegen.CodeGenFile, error) {
	for _, f := range files {
		path, err := w.target(f.FileName)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create directory for %s", f.FileName)
		}
		if err := os.WriteFile(path, []byte(f.FileContent), 0644); err != nil {
			return nil, errors.Wrapf(err, "failed to write %s", f.FileName)
		}
		w.logger.Debug().Str("file", path).Int("bytes", len(f.FileContent)).Msg("wrote file")
	}

	w.logger.Info().Str("dir", w.outputDir).Int("files", len(files)).Msg("generated files written")
	return files, nil
}

// target resolves a file name against the output directory, rejecting names
// that would land outside it
func (w *WriteToDisk) target(name string) (string, error) {
	if name == "" {
		return "", errors.New("generated file has an empty name")
	}
	if filepath.IsAbs(name) {
		return "", errors.Newf("generated file name %s must be relative", name)
	}
	rel := filepath.Clean(filepath.FromSlash(name))
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf("generated file %s escapes the output directory", name)
	}
	return filepath.Join(w.outputDir, rel), nil
}
