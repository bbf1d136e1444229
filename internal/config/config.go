// Package config loads the genpipe project file: the schema to read and the
// generation configurations to run against it.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/okra-platform/genpipe/internal/postprocess"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrConfiguration marks every error caused by an invalid project file
var ErrConfiguration = errors.New("invalid configuration")

// Defaults applied to missing fields
const (
	DefaultSchema        = "./types.gql"
	DefaultPackage       = "generated"
	DefaultName          = "default"
	DefaultOutputDir     = "./Generated"
	DefaultLineEnding    = "unix"
	DefaultFileExtension = ".gen.go"
	DefaultDebounce      = "250ms"
)

// FileNames are the project file names searched for, in order
var FileNames = []string{"genpipe.json", "genpipe.yaml", "genpipe.yml", "genpipe.toml"}

// Config represents the genpipe project file
type Config struct {
	Schema         string      `json:"schema" yaml:"schema" toml:"schema"`
	Package        string      `json:"package" yaml:"package" toml:"package"`
	Configurations []RunConfig `json:"configurations" yaml:"configurations" toml:"configurations"`
	Dev            DevConfig   `json:"dev" yaml:"dev" toml:"dev"`
}

// RunConfig is one named generation configuration. Empty Schema and Package
// inherit the project-level values.
type RunConfig struct {
	Name          string    `json:"name" yaml:"name" toml:"name"`
	Schema        string    `json:"schema,omitempty" yaml:"schema,omitempty" toml:"schema,omitempty"`
	OutputDir     string    `json:"outputDir" yaml:"outputDir" toml:"outputDir"`
	LineEnding    string    `json:"lineEnding" yaml:"lineEnding" toml:"lineEnding"`
	FileExtension string    `json:"fileExtension" yaml:"fileExtension" toml:"fileExtension"`
	Package       string    `json:"package,omitempty" yaml:"package,omitempty" toml:"package,omitempty"`
	Plugins       PluginSet `json:"plugins,omitempty" yaml:"plugins,omitempty" toml:"plugins,omitempty"`
}

// PluginSet lists the enabled plugin names per role. A nil list enables
// every registered plugin of that role; an empty list enables none.
type PluginSet struct {
	PreProcessors  []string `json:"preProcessors,omitempty" yaml:"preProcessors,omitempty" toml:"preProcessors,omitempty"`
	DataProviders  []string `json:"dataProviders,omitempty" yaml:"dataProviders,omitempty" toml:"dataProviders,omitempty"`
	CodeGenerators []string `json:"codeGenerators,omitempty" yaml:"codeGenerators,omitempty" toml:"codeGenerators,omitempty"`
	PostProcessors []string `json:"postProcessors,omitempty" yaml:"postProcessors,omitempty" toml:"postProcessors,omitempty"`
}

// Names returns the enabled names for role
func (p PluginSet) Names(role codegen.Role) []string {
	switch role {
	case codegen.RolePreProcessor:
		return p.PreProcessors
	case codegen.RoleDataProvider:
		return p.DataProviders
	case codegen.RoleCodeGenerator:
		return p.CodeGenerators
	case codegen.RolePostProcessor:
		return p.PostProcessors
	}
	return nil
}

// DevConfig contains watch mode configuration
type DevConfig struct {
	Watch    []string `json:"watch" yaml:"watch" toml:"watch"`
	Exclude  []string `json:"exclude" yaml:"exclude" toml:"exclude"`
	Debounce string   `json:"debounce" yaml:"debounce" toml:"debounce"`
}

// DebounceDuration parses Debounce
func (d DevConfig) DebounceDuration() (time.Duration, error) {
	if d.Debounce == "" {
		return time.ParseDuration(DefaultDebounce)
	}
	v, err := time.ParseDuration(d.Debounce)
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "dev.debounce %q", d.Debounce), ErrConfiguration)
	}
	if v < 0 {
		return 0, errors.Mark(errors.Newf("dev.debounce %q is negative", d.Debounce), ErrConfiguration)
	}
	return v, nil
}

// Format is a project file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat parses a format name as accepted by `genpipe init --format`
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", errors.WithHint(
		errors.Mark(errors.Newf("unknown config format %q", s), ErrConfiguration),
		"use one of: json, yaml, toml",
	)
}

// FormatOf returns the format implied by a file name's extension
func FormatOf(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.Mark(errors.Newf("config file %s has no extension", path), ErrConfiguration)
	}
	return ParseFormat(ext)
}

// FileName returns the project file name written for f
func (f Format) FileName() string {
	return "genpipe." + string(f)
}

// Marshal encodes cfg in format f
func Marshal(cfg *Config, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode JSON config")
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, errors.Wrap(err, "failed to encode YAML config")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "failed to encode YAML config")
		}
		return buf.Bytes(), nil
	case FormatTOML:
		data, err := toml.Marshal(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode TOML config")
		}
		return data, nil
	}
	return nil, errors.Mark(errors.Newf("unknown config format %q", f), ErrConfiguration)
}

// Unmarshal decodes data in format f and applies defaults
func Unmarshal(data []byte, f Format) (*Config, error) {
	var cfg Config
	var err error
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, &cfg)
	case FormatYAML:
		err = yaml.Unmarshal(data, &cfg)
	case FormatTOML:
		err = toml.Unmarshal(data, &cfg)
	default:
		return nil, errors.Mark(errors.Newf("unknown config format %q", f), ErrConfiguration)
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to parse %s config", f), ErrConfiguration)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// LoadConfigFromPath loads the project file at path
func LoadConfigFromPath(path string) (*Config, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg, err := Unmarshal(data, f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}

// Locate returns the path of the nearest project file in startDir or one of
// its parents
func Locate(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range FileNames {
			configPath := filepath.Join(dir, name)
			if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
				return configPath, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.WithHint(
		errors.Newf("no genpipe config found in %s or any parent directory", startDir),
		"run `genpipe init` to create one",
	)
}

// LoadProject loads the project file at path, or the nearest one above the
// working directory when path is empty. Paths in the returned config are
// resolved against the directory of the file, whose absolute path is
// returned alongside.
func LoadProject(path string) (*Config, string, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to get current directory")
		}
		if path, err = Locate(wd); err != nil {
			return nil, "", err
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to resolve %s", path)
	}
	cfg, err := LoadConfigFromPath(abs)
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Resolve(filepath.Dir(abs)); err != nil {
		return nil, "", err
	}
	return cfg, abs, nil
}

// ApplyDefaults fills every missing field
func (c *Config) ApplyDefaults() {
	if c.Schema == "" {
		c.Schema = DefaultSchema
	}
	if c.Package == "" {
		c.Package = DefaultPackage
	}
	if len(c.Configurations) == 0 {
		c.Configurations = []RunConfig{{Name: DefaultName}}
	}
	for i := range c.Configurations {
		rc := &c.Configurations[i]
		if rc.Schema == "" {
			rc.Schema = c.Schema
		}
		if rc.Package == "" {
			rc.Package = c.Package
		}
		if rc.OutputDir == "" {
			rc.OutputDir = DefaultOutputDir
		}
		if rc.LineEnding == "" {
			rc.LineEnding = DefaultLineEnding
		}
		if rc.FileExtension == "" {
			rc.FileExtension = DefaultFileExtension
		}
	}
	if len(c.Dev.Watch) == 0 {
		c.Dev.Watch = []string{"*.gql", "**/*.gql"}
	}
	if len(c.Dev.Exclude) == 0 {
		c.Dev.Exclude = []string{".git", "node_modules"}
	}
	if c.Dev.Debounce == "" {
		c.Dev.Debounce = DefaultDebounce
	}
}

// Validate checks every configuration and returns all problems found,
// one per line
func (c *Config) Validate() error {
	var problems []error

	if len(c.Configurations) == 0 {
		problems = append(problems, errors.New("no configurations defined"))
	}

	seen := make(map[string]bool, len(c.Configurations))
	for i, rc := range c.Configurations {
		name := strings.TrimSpace(rc.Name)
		if name == "" {
			problems = append(problems, errors.Newf("configuration #%d has no name", i+1))
		} else if seen[name] {
			problems = append(problems, errors.Newf("configuration %q defined more than once", name))
		}
		seen[name] = true

		problems = append(problems, rc.problems()...)
	}

	if _, err := c.Dev.DebounceDuration(); err != nil {
		problems = append(problems, err)
	}
	return joinProblems(problems)
}

// Validate checks a single configuration
func (rc RunConfig) Validate() error {
	return joinProblems(rc.problems())
}

func (rc RunConfig) problems() []error {
	var problems []error
	if strings.TrimSpace(rc.OutputDir) == "" {
		problems = append(problems, errors.Newf("configuration %q: outputDir is empty", rc.Name))
	}
	if strings.TrimSpace(rc.Schema) == "" {
		problems = append(problems, errors.Newf("configuration %q: schema is empty", rc.Name))
	}
	if _, err := postprocess.ParseLineEnding(rc.LineEnding); err != nil {
		problems = append(problems, errors.Wrapf(err, "configuration %q", rc.Name))
	}
	if !strings.HasPrefix(rc.FileExtension, ".") || len(rc.FileExtension) < 2 {
		problems = append(problems, errors.WithHint(
			errors.Newf("configuration %q: fileExtension %q must start with a dot", rc.Name, rc.FileExtension),
			"for example \".gen.go\"",
		))
	}
	return problems
}

func joinProblems(problems []error) error {
	if len(problems) == 0 {
		return nil
	}
	return errors.Mark(errors.Join(problems...), ErrConfiguration)
}

// Resolve makes every schema and output path absolute against root
func (c *Config) Resolve(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve project root %s", root)
	}

	c.Schema = resolvePath(abs, c.Schema)
	for i := range c.Configurations {
		rc := &c.Configurations[i]
		rc.Schema = resolvePath(abs, rc.Schema)
		rc.OutputDir = resolvePath(abs, rc.OutputDir)
	}
	return nil
}

func resolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// Find returns the configuration called name
func (c *Config) Find(name string) (RunConfig, bool) {
	for _, rc := range c.Configurations {
		if rc.Name == name {
			return rc, true
		}
	}
	return RunConfig{}, false
}
