package dev

import (
	"context"

	"github.com/okra-platform/genpipe/internal/build"
	"github.com/okra-platform/genpipe/internal/config"
	"github.com/okra-platform/genpipe/internal/pipeline"
)

// BatchRunner runs every configuration of a project
type BatchRunner interface {
	RunAll(ctx context.Context, cfg *config.Config, mode pipeline.Mode, parallel int) ([]build.Outcome, error)
}

// ConfigLoader reads a project file
type ConfigLoader func(path string) (*config.Config, error)
