package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/davecgh/go-spew/spew"
	"github.com/okra-platform/genpipe/internal/schema"
	"github.com/okra-platform/genpipe/internal/typedesc"
	"github.com/okra-platform/genpipe/internal/typename"
	"github.com/pterm/pterm"
)

type InspectOptions struct {
	// Config names the configuration whose schema is read; empty selects the first
	Config string

	// Raw dumps the descriptors instead of tabulating their names
	Raw bool
}

var rawDump = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Inspect prints the type descriptors a configuration's schema resolves to,
// with the names generated code refers to them by
func (c *Controller) Inspect(ctx context.Context, opts InspectOptions) error {
	cfg, _, err := c.loadProject()
	if err != nil {
		return err
	}
	rc, err := pickConfiguration(cfg, opts.Config)
	if err != nil {
		return err
	}

	descriptors, err := schema.Load(rc.Schema)
	if err != nil {
		return errors.Wrap(err, "failed to load schema")
	}

	w := c.out()
	if opts.Raw {
		rawDump.Fdump(w, descriptors)
		return nil
	}

	data := pterm.TableData{{"Full name", "Readable name", "Kind", "Marker"}}
	for _, d := range descriptors {
		data = append(data, []string{
			typename.FullName(d),
			typename.HumanReadableName(d),
			kindOf(d),
			markerOf(d.Marker),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render descriptor table")
	}
	fmt.Fprintln(w, table)

	for _, col := range typename.Collisions(referenced(descriptors)) {
		fmt.Fprintln(w, pterm.Warning.Sprintf("%s is the readable name of %s",
			col.HumanReadable, strings.Join(col.FullNames, ", ")))
	}
	return nil
}

// referenced returns descriptors plus every type their markers refer to
func referenced(descriptors []*typedesc.TypeDescriptor) []*typedesc.TypeDescriptor {
	all := append([]*typedesc.TypeDescriptor(nil), descriptors...)
	for _, d := range descriptors {
		d.Marker.Value.Walk(func(t *typedesc.TypeDescriptor) {
			all = append(all, t)
		})
	}
	return all
}

func kindOf(d *typedesc.TypeDescriptor) string {
	if d.IsEnum {
		return "enum"
	}
	return d.Kind.String()
}

func markerOf(m typedesc.Marker) string {
	if m.IsZero() {
		return ""
	}
	if m.Value == nil {
		return m.Kind.String()
	}
	return fmt.Sprintf("%s -> %s", m.Kind, typename.FullName(m.Value))
}
