// Package commands contains the CLI commands for the application
package commands

import (
	"io"
	"os"

	"github.com/okra-platform/genpipe/internal/build"
	"github.com/okra-platform/genpipe/internal/config"
	"github.com/rs/zerolog"
)

type Flags struct {
	LogLevel string

	// Config is the project file; empty searches upward from the working directory
	Config string
}

type Controller struct {
	Flags   *Flags
	Version string
	Logger  zerolog.Logger

	// Out receives command output; nil means stdout
	Out io.Writer
}

func (c *Controller) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Controller) configPath() string {
	if c.Flags == nil {
		return ""
	}
	return c.Flags.Config
}

// loadProject loads, resolves and validates the project file
func (c *Controller) loadProject() (*config.Config, string, error) {
	cfg, path, err := config.LoadProject(c.configPath())
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func (c *Controller) builder(opts ...build.Option) *build.Builder {
	base := []build.Option{
		build.WithLogger(c.Logger),
		build.WithVersion(c.Version),
	}
	return build.New(append(base, opts...)...)
}
