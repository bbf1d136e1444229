package commands

import (
	"context"
	"embed"
	"fmt"
	"go/token"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/config"
	"github.com/pterm/pterm"
)

//go:embed templates/*
var templatesFS embed.FS

// exampleSchema is the starter schema inside templatesFS
const exampleSchema = "templates/types.gql"

type InitOptions struct {
	Schema     string
	OutputDir  string
	LineEnding string
	Package    string
	Format     config.Format

	// Example writes a starter schema when none exists at Schema
	Example bool
}

type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(name string, data []byte, perm os.FileMode) error
	Getwd() (string, error)
}

type osFileSystem struct{}

func (fs *osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *osFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (fs *osFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (fs *osFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

type InitCommand struct {
	filesystem  FileSystem
	templatesFS fs.FS
	out         io.Writer
	format      config.Format
	// For testing: if set, skip prompting
	testOptions *InitOptions
}

func NewInitCommand(format config.Format, out io.Writer) *InitCommand {
	return &InitCommand{
		filesystem:  &osFileSystem{},
		templatesFS: templatesFS,
		out:         out,
		format:      format,
	}
}

// Init writes a new project file into the working directory
func (c *Controller) Init(ctx context.Context, format string) error {
	f, err := config.ParseFormat(format)
	if err != nil {
		return err
	}
	return NewInitCommand(f, c.out()).Run(ctx)
}

func (ic *InitCommand) Run(ctx context.Context) error {
	return ic.RunWithOptions(ctx)
}

func (ic *InitCommand) RunWithOptions(ctx context.Context, opts ...tea.ProgramOption) error {
	dir, err := ic.filesystem.Getwd()
	if err != nil {
		return errors.Wrap(err, "failed to get current directory")
	}
	if existing, ok := ic.existingConfig(dir); ok {
		return errors.WithHint(
			errors.Newf("project file already exists: %s", existing),
			"edit it directly or remove it to start over",
		)
	}

	var options *InitOptions

	// For testing: use provided options instead of prompting
	if ic.testOptions != nil {
		options = ic.testOptions
	} else {
		options, err = ic.promptInitOptions(opts...)
		if err != nil {
			return errors.Wrap(err, "failed to get init options")
		}
	}
	if options.Format == "" {
		options.Format = ic.format
	}

	cfg := &config.Config{
		Schema:  options.Schema,
		Package: options.Package,
		Configurations: []config.RunConfig{{
			Name:       config.DefaultName,
			OutputDir:  options.OutputDir,
			LineEnding: options.LineEnding,
		}},
	}
	validated := *cfg
	validated.Configurations = append([]config.RunConfig(nil), cfg.Configurations...)
	validated.ApplyDefaults()
	if err := validated.Validate(); err != nil {
		return err
	}

	data, err := config.Marshal(cfg, options.Format)
	if err != nil {
		return err
	}
	configPath := filepath.Join(dir, options.Format.FileName())
	if err := ic.filesystem.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", configPath)
	}
	fmt.Fprintln(ic.out, pterm.Success.Sprintf("Created %s", configPath))

	if options.Example {
		written, err := ic.writeExampleSchema(dir, options.Schema)
		if err != nil {
			return err
		}
		if written != "" {
			fmt.Fprintln(ic.out, pterm.Success.Sprintf("Created %s", written))
		}
	}

	fmt.Fprintln(ic.out, pterm.Info.Sprint("Run `genpipe generate` to generate code"))
	return nil
}

func (ic *InitCommand) existingConfig(dir string) (string, bool) {
	for _, name := range config.FileNames {
		p := filepath.Join(dir, name)
		if _, err := ic.filesystem.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// writeExampleSchema writes the starter schema unless a file already exists
// at schema. It returns the written path, or "" when nothing was written.
func (ic *InitCommand) writeExampleSchema(dir, schema string) (string, error) {
	dest := schema
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(dir, dest)
	}
	if _, err := ic.filesystem.Stat(dest); err == nil {
		return "", nil
	}

	data, err := fs.ReadFile(ic.templatesFS, exampleSchema)
	if err != nil {
		return "", errors.Wrap(err, "failed to read example schema")
	}
	if err := ic.filesystem.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", filepath.Dir(dest))
	}
	if err := ic.filesystem.WriteFile(dest, data, 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", dest)
	}
	return dest, nil
}

func (ic *InitCommand) promptInitOptions(opts ...tea.ProgramOption) (*InitOptions, error) {
	options := &InitOptions{
		Schema:     config.DefaultSchema,
		OutputDir:  config.DefaultOutputDir,
		LineEnding: config.DefaultLineEnding,
		Package:    config.DefaultPackage,
		Format:     ic.format,
		Example:    true,
	}

	form := ic.createInitForm(options)

	if len(opts) > 0 {
		// For testing: run with provided options
		program := tea.NewProgram(form, opts...)
		if _, err := program.Run(); err != nil {
			return nil, err
		}
	} else {
		// Normal execution
		if err := form.Run(); err != nil {
			return nil, err
		}
	}

	return options, nil
}

func (ic *InitCommand) createInitForm(options *InitOptions) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Schema").
				Description("Path of the GraphQL schema to generate from").
				Value(&options.Schema).
				Validate(notEmpty("schema path")),

			huh.NewInput().
				Title("Output directory").
				Description("Generated files are written here; stale files are removed").
				Value(&options.OutputDir).
				Validate(notEmpty("output directory")),

			huh.NewInput().
				Title("Package").
				Description("Go package name of the generated code").
				Value(&options.Package).
				Validate(validPackage),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Line endings").
				Options(
					huh.NewOption("Unix (LF)", "unix"),
					huh.NewOption("Windows (CRLF)", "windows"),
				).
				Value(&options.LineEnding),

			huh.NewSelect[config.Format]().
				Title("Project file format").
				Options(
					huh.NewOption("JSON", config.FormatJSON),
					huh.NewOption("YAML", config.FormatYAML),
					huh.NewOption("TOML", config.FormatTOML),
				).
				Value(&options.Format),

			huh.NewConfirm().
				Title("Create an example schema?").
				Value(&options.Example),
		),
	)
}

func notEmpty(what string) func(string) error {
	return func(s string) error {
		if s == "" {
			return errors.Newf("%s cannot be empty", what)
		}
		return nil
	}
}

func validPackage(s string) error {
	if !token.IsIdentifier(s) {
		return errors.Newf("%q is not a valid Go package name", s)
	}
	return nil
}
