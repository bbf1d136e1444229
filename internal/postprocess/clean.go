package postprocess

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/rs/zerolog"
)

// CleanTargetDirectory removes previously generated files from the output directory
type CleanTargetDirectory struct {
	outputDir string
	extension string
	logger    zerolog.Logger
}

// NewCleanTargetDirectory creates the cleanup post-processor. Only files whose
// names end in extension are deleted.
func NewCleanTargetDirectory(outputDir, extension string, logger zerolog.Logger) *CleanTargetDirectory {
	return &CleanTargetDirectory{
		outputDir: outputDir,
		extension: extension,
		logger:    logger.With().Str("component", "clean").Logger(),
	}
}

func (c *CleanTargetDirectory) Descriptor() codegen.Descriptor {
	return codegen.Descriptor{
		Name:     NameCleanTargetDirectory,
		Role:     codegen.RolePostProcessor,
		Priority: PriorityCleanTargetDirectory,
	}
}

// PostProcess deletes generated files under the output directory, creating the
// directory when it is missing. Deletion failures are logged and skipped.
func (c *CleanTargetDirectory) PostProcess(ctx context.Context, files []*codegen.CodeGenFile) ([]*codegen.CodeGenFile, error) {
	if c.extension == "" {
		return nil, errors.WithHint(
			errors.Newf("refusing to clean %s without a generated file extension", c.outputDir),
			"set fileExtension in the configuration",
		)
	}

	info, err := os.Stat(c.outputDir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(c.outputDir, 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create output directory %s", c.outputDir)
		}
		c.logger.Debug().Str("dir", c.outputDir).Msg("created output directory")
		return files, nil
	case err != nil:
		return nil, errors.Wrapf(err, "failed to stat output directory %s", c.outputDir)
	case !info.IsDir():
		return nil, errors.Newf("output path %s is not a directory", c.outputDir)
	}

	removed := 0
	walkErr := filepath.WalkDir(c.outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), c.extension) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			c.logger.Warn().Err(err).Str("path", path).Msg("failed to delete generated file")
			return nil
		}
		removed++
		return nil
	})
	if walkErr != nil {
		c.logger.Warn().Err(walkErr).Str("dir", c.outputDir).Msg("cleanup incomplete")
	}

	c.logger.Debug().Str("dir", c.outputDir).Int("removed", removed).Msg("cleaned output directory")
	return files, nil
}
