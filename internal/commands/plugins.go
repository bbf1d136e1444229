package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/okra-platform/genpipe/internal/config"
	"github.com/pterm/pterm"
)

// Plugins lists the registered plugins of a configuration per role, in
// execution order. An empty name selects the first configuration.
func (c *Controller) Plugins(ctx context.Context, name string) error {
	cfg, _, err := c.loadProject()
	if err != nil {
		return err
	}
	rc, err := pickConfiguration(cfg, name)
	if err != nil {
		return err
	}

	reg, err := c.builder().Registry(rc)
	if err != nil {
		return err
	}

	tables := make(map[codegen.Role]pterm.TableData, len(codegen.Roles))
	enabled := make(map[codegen.Role]map[string]bool, len(codegen.Roles))
	for _, role := range codegen.Roles {
		tables[role] = pterm.TableData{{"#", "Plugin", "Priority", "Dry run", "Enabled"}}
		enabled[role] = make(map[string]bool)
		for _, p := range reg.Filter(role, rc.Plugins.Names(role)) {
			enabled[role][p.Descriptor().Name] = true
		}
	}
	for _, d := range reg.Descriptors() {
		tables[d.Role] = append(tables[d.Role], []string{
			strconv.Itoa(len(tables[d.Role])),
			d.Name,
			strconv.Itoa(d.Priority),
			yesNo(d.RunInDryMode),
			yesNo(enabled[d.Role][d.Name]),
		})
	}

	w := c.out()
	fmt.Fprintln(w, pterm.Info.Sprintf("Configuration %s", rc.Name))
	for _, role := range codegen.Roles {
		data := tables[role]

		fmt.Fprintln(w)
		fmt.Fprintln(w, pterm.Bold.Sprint(role.String()))
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return errors.Wrap(err, "failed to render plugin table")
		}
		fmt.Fprintln(w, table)
	}
	return nil
}

// pickConfiguration returns the configuration called name, or the first one
// when name is empty
func pickConfiguration(cfg *config.Config, name string) (config.RunConfig, error) {
	if name == "" {
		return cfg.Configurations[0], nil
	}
	rc, ok := cfg.Find(name)
	if !ok {
		return config.RunConfig{}, errors.WithHint(
			errors.Mark(errors.Newf("unknown configuration %q", name), config.ErrConfiguration),
			"check the configuration names in the project file",
		)
	}
	return rc, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
