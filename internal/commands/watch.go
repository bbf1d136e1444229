package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/config"
	"github.com/okra-platform/genpipe/internal/dev"
	"github.com/pterm/pterm"
)

type WatchOptions struct {
	Parallel int
}

// WatchServer is the part of dev.Server the watch command drives
type WatchServer interface {
	Start(ctx context.Context) error
}

// ServerFactory creates the watch server for a loaded project
type ServerFactory func(cfg *config.Config, configPath, projectRoot string, runner dev.BatchRunner, opts ...dev.Option) (WatchServer, error)

// WatchDependencies for the watch command
type WatchDependencies struct {
	LoadProject func() (*config.Config, string, error)
	NewServer   ServerFactory
	Runner      dev.BatchRunner

	// NotifyContext returns a context cancelled on interrupt
	NotifyContext func(ctx context.Context) (context.Context, context.CancelFunc)

	Output io.Writer
}

// WatchCommand encapsulates the watch logic with injected dependencies
type WatchCommand struct {
	deps WatchDependencies
	opts WatchOptions
	ctrl *Controller
}

// NewWatchCommand creates a watch command with default dependencies
func (c *Controller) NewWatchCommand(opts WatchOptions) *WatchCommand {
	return &WatchCommand{
		opts: opts,
		ctrl: c,
		deps: WatchDependencies{
			LoadProject: c.loadProject,
			NewServer: func(cfg *config.Config, configPath, projectRoot string, runner dev.BatchRunner, opts ...dev.Option) (WatchServer, error) {
				return dev.NewServer(cfg, configPath, projectRoot, runner, opts...)
			},
			Runner: c.builder(),
			NotifyContext: func(ctx context.Context) (context.Context, context.CancelFunc) {
				return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			},
			Output: c.out(),
		},
	}
}

// WithDependencies allows injecting custom dependencies for testing
func (wc *WatchCommand) WithDependencies(deps WatchDependencies) *WatchCommand {
	wc.deps = deps
	return wc
}

// Watch regenerates every configuration whenever the schema or the project
// file changes, until interrupted
func (c *Controller) Watch(ctx context.Context, opts WatchOptions) error {
	return c.NewWatchCommand(opts).Execute(ctx)
}

// Execute runs the watch command
func (wc *WatchCommand) Execute(ctx context.Context) error {
	cfg, configPath, err := wc.deps.LoadProject()
	if err != nil {
		return errors.Wrap(err, "failed to load project config")
	}
	root := filepath.Dir(configPath)

	w := wc.deps.Output
	fmt.Fprintln(w, pterm.Info.Sprintf("Watching %s", root))
	fmt.Fprintln(w, pterm.Info.Sprintf("Project file: %s", configPath))
	fmt.Fprintln(w, pterm.Info.Sprintf("Configurations: %d", len(cfg.Configurations)))

	ctx, cancel := wc.deps.NotifyContext(ctx)
	defer cancel()

	opts := []dev.Option{
		dev.WithParallel(wc.opts.Parallel),
		dev.WithReport(func(r dev.Rebuild) { printRebuild(w, r) }),
	}
	if wc.ctrl != nil {
		opts = append(opts, dev.WithLogger(wc.ctrl.Logger))
	}

	server, err := wc.deps.NewServer(cfg, configPath, root, wc.deps.Runner, opts...)
	if err != nil {
		return err
	}
	if err := server.Start(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return errors.Wrap(err, "watch server error")
	}

	fmt.Fprintln(w, pterm.Info.Sprint("Stopped watching"))
	return nil
}

func printRebuild(w io.Writer, r dev.Rebuild) {
	fmt.Fprintln(w, pterm.Info.Sprintf("Regenerating (%s)", r.Trigger))
	if r.Err != nil && len(r.Outcomes) == 0 {
		fmt.Fprintln(w, pterm.Error.Sprint(r.Err))
		return
	}
	printOutcomes(w, r.Outcomes)
}
