package golang

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/okra-platform/genpipe/internal/codegen/writer"
	"github.com/okra-platform/genpipe/internal/typedesc"
	"github.com/okra-platform/genpipe/internal/typename"
	"github.com/rs/zerolog"
)

// TypeNameTable renders a lookup from full type names to generated identifiers
// covering every type the records reference
type TypeNameTable struct {
	opts   Options
	logger zerolog.Logger
}

// NewTypeNameTable creates the type name table generator
func NewTypeNameTable(opts Options, logger zerolog.Logger) *TypeNameTable {
	return &TypeNameTable{
		opts:   opts.withDefaults(),
		logger: logger.With().Str("component", "typenames").Logger(),
	}
}

func (g *TypeNameTable) Descriptor() codegen.Descriptor {
	return codegen.Descriptor{
		Name:         NameTypeNameTable,
		Role:         codegen.RoleCodeGenerator,
		Priority:     PriorityTypeNameTable,
		RunInDryMode: true,
	}
}

func (g *TypeNameTable) Generate(ctx context.Context, data []codegen.CodeGeneratorData) ([]*codegen.CodeGenFile, error) {
	types := referencedTypes(data)
	if len(types) == 0 {
		return nil, nil
	}

	collidesWith := make(map[string][]string)
	for _, c := range typename.Collisions(types) {
		g.logger.Warn().
			Str("name", c.HumanReadable).
			Strs("types", c.FullNames).
			Msg("distinct types share a generated name")
		for _, full := range c.FullNames {
			collidesWith[full] = c.FullNames
		}
	}

	byFull := make(map[string]string, len(types))
	for _, d := range types {
		byFull[typename.FullName(d)] = typename.HumanReadableName(d)
	}
	keys := make([]string, 0, len(byFull))
	for k := range byFull {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := writer.New("\t")
	w.Linef("package %s", g.opts.Package)
	w.BlankLine()

	w.Comment("typeNames maps full type names to the names used in generated code")
	w.Block("var typeNames = map[string]string{", "}", func() {
		for _, k := range keys {
			if others := collidesWith[k]; len(others) > 0 {
				w.Linef("// name collision: %s", strings.Join(others, ", "))
			}
			w.Linef("%s: %s,", strconv.Quote(k), strconv.Quote(byFull[k]))
		}
	})
	w.BlankLine()

	w.Comment("TypeName returns the generated name for a full type name")
	w.Block("func TypeName(fullName string) (string, bool) {", "}", func() {
		w.Line("name, ok := typeNames[fullName]")
		w.Line("return name, ok")
	})

	return []*codegen.CodeGenFile{
		codegen.NewFile(g.opts.fileName("typenames"), w.String(), NameTypeNameTable),
	}, nil
}

// referencedTypes collects every descriptor stored in the records, walking
// into array elements and generic arguments, in first-seen order
func referencedTypes(data []codegen.CodeGeneratorData) []*typedesc.TypeDescriptor {
	var out []*typedesc.TypeDescriptor
	seen := make(map[*typedesc.TypeDescriptor]struct{})
	collect := func(d *typedesc.TypeDescriptor) {
		if _, ok := seen[d]; ok {
			return
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}

	for _, rec := range data {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if d, ok := rec.Descriptor(k); ok {
				d.Walk(collect)
			}
		}
	}
	return out
}
