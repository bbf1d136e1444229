// Package build hosts the pipeline: it turns each configuration of a project
// file into a registry, a plan and a run.
package build

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/okra-platform/genpipe/internal/config"
	"github.com/okra-platform/genpipe/internal/pipeline"
	"github.com/okra-platform/genpipe/internal/runcache"
	"github.com/okra-platform/genpipe/internal/schema"
	"github.com/okra-platform/genpipe/internal/typedesc"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Outcome is the result of running one configuration
type Outcome struct {
	Config string
	RunID  string
	Mode   pipeline.Mode

	// Result is nil when the run failed
	Result *pipeline.Result
	Err    error

	Duration time.Duration
}

// Failed reports whether the configuration did not complete
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Option configures a Builder
type Option func(*Builder)

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger.With().Str("component", "builder").Logger()
	}
}

// WithVersion sets the version written into file headers
func WithVersion(version string) Option {
	return func(b *Builder) {
		b.version = version
	}
}

// WithProgress registers a callback invoked after each plugin call of every
// run. Parallel batches call it from several goroutines.
func WithProgress(fn func(config string, p pipeline.Progress)) Option {
	return func(b *Builder) {
		b.onProgress = fn
	}
}

// WithPlugins registers additional plugins into every configuration's
// registry alongside the built-ins
func WithPlugins(fn func(Settings) []codegen.Plugin) Option {
	return func(b *Builder) {
		b.extra = fn
	}
}

// WithSchemaLoader replaces the symbol provider
func WithSchemaLoader(fn func(path string) ([]*typedesc.TypeDescriptor, error)) Option {
	return func(b *Builder) {
		b.load = fn
	}
}

// Builder runs configurations. It holds no per-run state, so one Builder
// may run many configurations concurrently.
type Builder struct {
	logger     zerolog.Logger
	version    string
	onProgress func(config string, p pipeline.Progress)
	extra      func(Settings) []codegen.Plugin
	load       func(path string) ([]*typedesc.TypeDescriptor, error)
}

// New creates a Builder
func New(opts ...Option) *Builder {
	b := &Builder{
		logger: zerolog.Nop(),
		load:   schema.Load,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Registry returns the registry a configuration would run with
func (b *Builder) Registry(rc config.RunConfig) (*codegen.Registry, error) {
	settings, err := SettingsFor(rc, b.version)
	if err != nil {
		return nil, err
	}
	return b.registry(settings, b.logger)
}

// Plan returns the plugins a configuration would run in mode, in order
func (b *Builder) Plan(rc config.RunConfig, mode pipeline.Mode) (pipeline.Plan, error) {
	reg, err := b.Registry(rc)
	if err != nil {
		return pipeline.Plan{}, err
	}
	plan := pipeline.PlanFromRegistry(reg, rc.Plugins)
	if mode == pipeline.ModeDry {
		return plan.DryRun(), nil
	}
	return plan, nil
}

func (b *Builder) registry(settings Settings, logger zerolog.Logger) (*codegen.Registry, error) {
	reg, err := NewRegistry(settings, logger)
	if err != nil {
		return nil, err
	}
	if b.extra != nil {
		for _, p := range b.extra(settings) {
			if err := reg.Register(p); err != nil {
				return nil, errors.Mark(err, config.ErrConfiguration)
			}
		}
	}
	return reg, nil
}

// Run executes one configuration with a fresh registry and RunCache.
// A cancelled run returns a Cancelled result and a nil error.
func (b *Builder) Run(ctx context.Context, rc config.RunConfig, mode pipeline.Mode) (Outcome, error) {
	start := time.Now()
	out := Outcome{
		Config: rc.Name,
		RunID:  uuid.NewString(),
		Mode:   mode,
	}
	logger := b.logger.With().
		Str("run_id", out.RunID).
		Str("config", rc.Name).
		Stringer("mode", mode).
		Logger()

	result, err := b.run(ctx, rc, mode, logger)
	out.Duration = time.Since(start)
	if err != nil {
		logger.Error().Err(err).Msg("generation failed")
		return out, err
	}
	out.Result = result

	logger.Info().
		Stringer("state", result.State).
		Int("files", len(result.Files)).
		Int("records", result.Records).
		Dur("duration", out.Duration).
		Msg("generation finished")
	return out, nil
}

func (b *Builder) run(ctx context.Context, rc config.RunConfig, mode pipeline.Mode, logger zerolog.Logger) (*pipeline.Result, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	settings, err := SettingsFor(rc, b.version)
	if err != nil {
		return nil, err
	}

	descriptors, err := b.load(rc.Schema)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load schema")
	}
	logger.Debug().
		Str("schema", rc.Schema).
		Int("descriptors", len(descriptors)).
		Msg("loaded type descriptors")

	cache := runcache.New()
	cache.Set(typedesc.CacheKey, descriptors)

	reg, err := b.registry(settings, logger)
	if err != nil {
		return nil, err
	}
	plan := pipeline.PlanFromRegistry(reg, rc.Plugins)

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if b.onProgress != nil {
		name := rc.Name
		opts = append(opts, pipeline.WithProgress(func(p pipeline.Progress) {
			b.onProgress(name, p)
		}))
	}
	runner := pipeline.NewRunner(plan, opts...)

	if mode == pipeline.ModeDry {
		return runner.RunDry(ctx, cache)
	}
	return runner.RunFull(ctx, cache)
}

// RunAll runs every configuration of cfg. With parallel > 1 up to parallel
// configurations run at once. A failing configuration does not stop the
// others; outcomes keep configuration order and the returned error combines
// every failure.
func (b *Builder) RunAll(ctx context.Context, cfg *config.Config, mode pipeline.Mode, parallel int) ([]Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(cfg.Configurations))
	runOne := func(i int) {
		out, err := b.Run(ctx, cfg.Configurations[i], mode)
		out.Err = err
		outcomes[i] = out
	}

	if parallel <= 1 {
		for i := range cfg.Configurations {
			runOne(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(parallel)
		for i := range cfg.Configurations {
			g.Go(func() error {
				runOne(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	var errs error
	var failed []string
	for _, o := range outcomes {
		if o.Failed() {
			failed = append(failed, o.Config)
			errs = errors.CombineErrors(errs, errors.Wrapf(o.Err, "configuration %s", o.Config))
		}
	}
	if errs != nil {
		b.logger.Warn().
			Strs("failed", failed).
			Int("total", len(outcomes)).
			Msg("some configurations failed")
		return outcomes, errors.Wrapf(errs, "%d of %d configurations failed (%s)",
			len(failed), len(outcomes), strings.Join(failed, ", "))
	}
	return outcomes, nil
}
