package pipeline

import (
	"github.com/okra-platform/genpipe/internal/codegen"
)

// Plan is the ordered plugin subset of each role for one run
type Plan struct {
	PreProcessors  []codegen.PreProcessor
	DataProviders  []codegen.DataProvider
	CodeGenerators []codegen.CodeGenerator
	PostProcessors []codegen.PostProcessor
}

// Selector supplies the enabled plugin names of each role. A nil name list
// enables every plugin of that role.
type Selector interface {
	Names(role codegen.Role) []string
}

// PlanFromRegistry builds a plan from reg, keeping only the plugins sel enables.
// A nil sel enables everything.
func PlanFromRegistry(reg *codegen.Registry, sel Selector) Plan {
	enabled := func(role codegen.Role) []codegen.Plugin {
		if sel == nil {
			return reg.Ordered(role)
		}
		return reg.Filter(role, sel.Names(role))
	}

	var plan Plan
	for _, p := range enabled(codegen.RolePreProcessor) {
		plan.PreProcessors = append(plan.PreProcessors, p.(codegen.PreProcessor))
	}
	for _, p := range enabled(codegen.RoleDataProvider) {
		plan.DataProviders = append(plan.DataProviders, p.(codegen.DataProvider))
	}
	for _, p := range enabled(codegen.RoleCodeGenerator) {
		plan.CodeGenerators = append(plan.CodeGenerators, p.(codegen.CodeGenerator))
	}
	for _, p := range enabled(codegen.RolePostProcessor) {
		plan.PostProcessors = append(plan.PostProcessors, p.(codegen.PostProcessor))
	}
	return plan
}

// DryRun returns the plan restricted to plugins eligible for dry runs
func (p Plan) DryRun() Plan {
	return Plan{
		PreProcessors:  dryEligible(p.PreProcessors),
		DataProviders:  dryEligible(p.DataProviders),
		CodeGenerators: dryEligible(p.CodeGenerators),
		PostProcessors: dryEligible(p.PostProcessors),
	}
}

// Len returns the number of plugin invocations the plan performs
func (p Plan) Len() int {
	return len(p.PreProcessors) + len(p.DataProviders) + len(p.CodeGenerators) + len(p.PostProcessors)
}

// plugins returns every planned plugin in execution order
func (p Plan) plugins() []codegen.Plugin {
	all := make([]codegen.Plugin, 0, p.Len())
	for _, x := range p.PreProcessors {
		all = append(all, x)
	}
	for _, x := range p.DataProviders {
		all = append(all, x)
	}
	for _, x := range p.CodeGenerators {
		all = append(all, x)
	}
	for _, x := range p.PostProcessors {
		all = append(all, x)
	}
	return all
}

func dryEligible[T codegen.Plugin](plugins []T) []T {
	var out []T
	for _, p := range plugins {
		if p.Descriptor().RunInDryMode {
			out = append(out, p)
		}
	}
	return out
}
