package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/build"
	"github.com/okra-platform/genpipe/internal/config"
	"github.com/okra-platform/genpipe/internal/pipeline"
	"github.com/pterm/pterm"
)

type GenerateOptions struct {
	DryRun   bool
	Parallel int

	// Archive, when set, receives a tar.gz of every generated file
	Archive string

	// Only restricts the batch to the named configurations
	Only []string

	NoProgress bool
}

// Generate runs every configuration of the project file
func (c *Controller) Generate(ctx context.Context, opts GenerateOptions) error {
	cfg, _, err := c.loadProject()
	if err != nil {
		return err
	}
	cfg, err = selectConfigurations(cfg, opts.Only)
	if err != nil {
		return err
	}

	mode := pipeline.ModeFull
	if opts.DryRun {
		mode = pipeline.ModeDry
	}

	var bar *progressBar
	var builderOpts []build.Option
	if !opts.NoProgress {
		bar = c.startProgress(cfg, mode)
		builderOpts = append(builderOpts, build.WithProgress(bar.update))
	}

	outcomes, runErr := c.builder(builderOpts...).RunAll(ctx, cfg, mode, opts.Parallel)
	bar.stop()

	w := c.out()
	printOutcomes(w, outcomes)
	if opts.DryRun {
		if err := printFileTable(w, outcomes); err != nil {
			return err
		}
	}

	if opts.Archive != "" && len(outcomes) > 0 {
		if err := build.WriteArchive(opts.Archive, outcomes); err != nil {
			return errors.CombineErrors(runErr, err)
		}
		fmt.Fprintln(w, pterm.Info.Sprintf("Archive written to %s", opts.Archive))
	}
	return runErr
}

// selectConfigurations returns a copy of cfg holding only the named
// configurations, in project order
func selectConfigurations(cfg *config.Config, only []string) (*config.Config, error) {
	if len(only) == 0 {
		return cfg, nil
	}

	selected := *cfg
	selected.Configurations = nil
	for _, name := range only {
		if _, err := pickConfiguration(cfg, name); err != nil {
			return nil, err
		}
	}
	for _, rc := range cfg.Configurations {
		for _, name := range only {
			if rc.Name == name {
				selected.Configurations = append(selected.Configurations, rc)
				break
			}
		}
	}
	return &selected, nil
}

func printOutcomes(w io.Writer, outcomes []build.Outcome) {
	for _, o := range outcomes {
		switch {
		case o.Failed():
			fmt.Fprintln(w, pterm.Error.Sprintf("%s: %v", o.Config, o.Err))
		case o.Result.State == pipeline.StateCancelled:
			fmt.Fprintln(w, pterm.Warning.Sprintf("%s: cancelled", o.Config))
		default:
			fmt.Fprintln(w, pterm.Success.Sprintf("%s: %d files from %d records in %s (%s run)",
				o.Config, len(o.Result.Files), o.Result.Records, o.Duration.Round(time.Millisecond), o.Mode))
		}
	}
}

// printFileTable lists the in-memory files of every successful run
func printFileTable(w io.Writer, outcomes []build.Outcome) error {
	data := pterm.TableData{{"Configuration", "File", "Generator", "Bytes"}}
	for _, o := range outcomes {
		if o.Failed() || o.Result == nil {
			continue
		}
		for _, f := range o.Result.Files {
			data = append(data, []string{o.Config, f.FileName, f.GeneratorName, strconv.Itoa(len(f.FileContent))})
		}
	}
	if len(data) == 1 {
		fmt.Fprintln(w, pterm.Info.Sprint("No files generated"))
		return nil
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render file table")
	}
	fmt.Fprintln(w, table)
	return nil
}

// progressBar serializes updates from parallel runs onto one pterm bar.
// A nil progressBar ignores every call.
type progressBar struct {
	mu  sync.Mutex
	bar *pterm.ProgressbarPrinter
}

func (c *Controller) startProgress(cfg *config.Config, mode pipeline.Mode) *progressBar {
	// Total is the number of plugin calls across the batch; configurations
	// that cannot be planned fail before reporting any progress
	b := c.builder()
	total := 0
	for _, rc := range cfg.Configurations {
		if plan, err := b.Plan(rc, mode); err == nil {
			total += plan.Len()
		}
	}
	if total == 0 {
		return nil
	}

	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Generating").
		WithWriter(os.Stderr).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		c.Logger.Debug().Err(err).Msg("progress bar unavailable")
		return nil
	}
	return &progressBar{bar: bar}
}

func (p *progressBar) update(name string, progress pipeline.Progress) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar.UpdateTitle(fmt.Sprintf("%s: %s", name, progress.Plugin))
	p.bar.Increment()
}

func (p *progressBar) stop() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = p.bar.Stop()
}
