// Package pipeline executes a plan of code generation plugins.
//
// A run moves through four stages in fixed order. Each stage completes before
// the next begins and nothing inside a run is parallel. Cancellation is
// checked before every plugin call; a plugin already running is never
// interrupted.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/okra-platform/genpipe/internal/runcache"
	"github.com/rs/zerolog"
)

// State is the lifecycle position of a Runner
type State int

const (
	StateIdle State = iota
	StatePreProcessing
	StateDataProviding
	StateGenerating
	StatePostProcessing
	StateDone
	StateCancelled
	StateFailed
)

// String returns the stage label used in progress reports and errors
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreProcessing:
		return "pre-processing"
	case StateDataProviding:
		return "data-providing"
	case StateGenerating:
		return "generating"
	case StatePostProcessing:
		return "post-processing"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Mode selects which plugins of the plan take part in a run
type Mode int

const (
	ModeFull Mode = iota
	ModeDry
)

func (m Mode) String() string {
	if m == ModeDry {
		return "dry"
	}
	return "full"
}

// Progress is reported after each plugin call
type Progress struct {
	Stage     State
	Plugin    string
	Completed int
	Total     int
}

// Fraction returns completed work in [0, 1]; an empty run is complete
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Completed) / float64(p.Total)
}

// Result is the outcome of a run that was not failed by a plugin
type Result struct {
	Mode  Mode
	State State

	// Files is the post-processed file sequence; nil when cancelled
	Files []*codegen.CodeGenFile

	// Records is the number of data records the providers produced
	Records int

	Completed int
	Total     int
	Duration  time.Duration
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the logger; the default discards output
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger.With().Str("component", "pipeline").Logger()
	}
}

// WithProgress registers a callback invoked synchronously after each plugin call
func WithProgress(fn func(Progress)) Option {
	return func(r *Runner) {
		r.onProgress = fn
	}
}

// Runner executes a Plan once
type Runner struct {
	plan       Plan
	logger     zerolog.Logger
	onProgress func(Progress)

	mu    sync.Mutex
	state State

	completed int
	total     int
}

// NewRunner creates a runner for plan
func NewRunner(plan Plan, opts ...Option) *Runner {
	r := &Runner{
		plan:   plan,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the runner's current state
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// RunFull executes every planned plugin
func (r *Runner) RunFull(ctx context.Context, cache *runcache.Cache) (*Result, error) {
	return r.run(ctx, cache, ModeFull)
}

// RunDry executes only the planned plugins eligible for dry runs
func (r *Runner) RunDry(ctx context.Context, cache *runcache.Cache) (*Result, error) {
	return r.run(ctx, cache, ModeDry)
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Runner) run(ctx context.Context, cache *runcache.Cache, mode Mode) (*Result, error) {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return nil, ErrRunnerUsed
	}
	r.state = StatePreProcessing
	r.mu.Unlock()

	start := time.Now()
	plan := r.plan
	if mode == ModeDry {
		plan = plan.DryRun()
	}
	r.total = plan.Len()

	r.logger.Debug().
		Stringer("mode", mode).
		Int("plugins", r.total).
		Msg("starting pipeline run")

	for _, p := range plan.plugins() {
		if ca, ok := p.(codegen.CacheAware); ok {
			ca.SetCache(cache)
		}
	}

	result, err := r.execute(ctx, plan)
	if err != nil {
		r.setState(StateFailed)
		r.logger.Error().Err(err).Msg("pipeline run failed")
		return nil, err
	}

	result.Mode = mode
	result.Completed = r.completed
	result.Total = r.total
	result.Duration = time.Since(start)
	r.setState(result.State)

	r.logger.Debug().
		Stringer("state", result.State).
		Int("files", len(result.Files)).
		Dur("duration", result.Duration).
		Msg("pipeline run finished")

	return result, nil
}

// execute runs the stages in order. A nil error with a Cancelled result means
// ctx was cancelled at a plugin boundary.
func (r *Runner) execute(ctx context.Context, plan Plan) (*Result, error) {
	cancelled := &Result{State: StateCancelled}

	r.setState(StatePreProcessing)
	for _, p := range plan.PreProcessors {
		if ctx.Err() != nil {
			return cancelled, nil
		}
		if err := r.call(StatePreProcessing, p, func() error {
			return p.PreProcess(ctx)
		}); err != nil {
			return nil, err
		}
	}

	r.setState(StateDataProviding)
	var data []codegen.CodeGeneratorData
	for _, p := range plan.DataProviders {
		if ctx.Err() != nil {
			return cancelled, nil
		}
		if err := r.call(StateDataProviding, p, func() error {
			records, err := p.GetData(ctx)
			data = append(data, records...)
			return err
		}); err != nil {
			return nil, err
		}
	}

	r.setState(StateGenerating)
	var files []*codegen.CodeGenFile
	for _, p := range plan.CodeGenerators {
		if ctx.Err() != nil {
			return cancelled, nil
		}
		if err := r.call(StateGenerating, p, func() error {
			out, err := p.Generate(ctx, data)
			files = append(files, out...)
			return err
		}); err != nil {
			return nil, err
		}
	}

	r.setState(StatePostProcessing)
	for _, p := range plan.PostProcessors {
		if ctx.Err() != nil {
			return cancelled, nil
		}
		if err := r.call(StatePostProcessing, p, func() error {
			out, err := p.PostProcess(ctx, files)
			files = out
			return err
		}); err != nil {
			return nil, err
		}
	}

	return &Result{
		State:   StateDone,
		Files:   files,
		Records: len(data),
	}, nil
}

// call invokes fn for plugin p, wraps its error and reports progress
func (r *Runner) call(stage State, p codegen.Plugin, fn func() error) error {
	name := p.Descriptor().Name
	start := time.Now()

	if err := fn(); err != nil {
		return &PluginError{Stage: stage, Plugin: name, Err: err}
	}

	r.completed++
	r.logger.Debug().
		Stringer("stage", stage).
		Str("plugin", name).
		Dur("duration", time.Since(start)).
		Msg("plugin finished")

	if r.onProgress != nil {
		r.onProgress(Progress{
			Stage:     stage,
			Plugin:    name,
			Completed: r.completed,
			Total:     r.total,
		})
	}
	return nil
}
