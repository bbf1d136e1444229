// Package codegen defines the plugin contracts of the generation pipeline.
//
// A plugin fulfils exactly one Role. The pipeline runs the roles in a fixed
// order (pre-process, provide data, generate, post-process); within a role,
// plugins run by ascending Priority. Plugins are registered explicitly with a
// Registry; nothing is discovered by reflection.
package codegen

import (
	"context"

	"github.com/okra-platform/genpipe/internal/runcache"
)

// Role is the pipeline stage a plugin takes part in
type Role int

const (
	RolePreProcessor Role = iota
	RoleDataProvider
	RoleCodeGenerator
	RolePostProcessor
)

// Roles lists every role in execution order
var Roles = []Role{RolePreProcessor, RoleDataProvider, RoleCodeGenerator, RolePostProcessor}

// String returns a human-readable representation of the Role
func (r Role) String() string {
	switch r {
	case RolePreProcessor:
		return "pre-processor"
	case RoleDataProvider:
		return "data-provider"
	case RoleCodeGenerator:
		return "code-generator"
	case RolePostProcessor:
		return "post-processor"
	default:
		return "unknown"
	}
}

// Descriptor identifies a plugin and how it is scheduled. It is fixed when the
// plugin is constructed.
type Descriptor struct {
	// Name identifies the plugin within its role and breaks priority ties
	Name string

	// Role is the stage the plugin runs in
	Role Role

	// Priority orders plugins within a role, ascending
	Priority int

	// RunInDryMode marks the plugin as safe to run when previewing a generation
	RunInDryMode bool
}

// Plugin is implemented by every pipeline plugin
type Plugin interface {
	Descriptor() Descriptor
}

// PreProcessor runs before data discovery, for side effects such as validation
type PreProcessor interface {
	Plugin
	PreProcess(ctx context.Context) error
}

// DataProvider discovers the records code generators work from
type DataProvider interface {
	Plugin
	GetData(ctx context.Context) ([]CodeGeneratorData, error)
}

// CodeGenerator renders files from the records of every data provider.
// The data slice is shared between generators and must not be modified.
type CodeGenerator interface {
	Plugin
	Generate(ctx context.Context, data []CodeGeneratorData) ([]*CodeGenFile, error)
}

// PostProcessor transforms the file sequence. It may modify files in place,
// reorder, merge or replace them; its return value is the next stage's input.
type PostProcessor interface {
	Plugin
	PostProcess(ctx context.Context, files []*CodeGenFile) ([]*CodeGenFile, error)
}

// CacheAware is implemented by plugins that read or write the run cache. The
// pipeline hands every such plugin the run's cache before the first stage.
type CacheAware interface {
	SetCache(c *runcache.Cache)
}

// implementsRole reports whether p implements the interface of role
func implementsRole(p Plugin, role Role) bool {
	switch role {
	case RolePreProcessor:
		_, ok := p.(PreProcessor)
		return ok
	case RoleDataProvider:
		_, ok := p.(DataProvider)
		return ok
	case RoleCodeGenerator:
		_, ok := p.(CodeGenerator)
		return ok
	case RolePostProcessor:
		_, ok := p.(PostProcessor)
		return ok
	default:
		return false
	}
}
