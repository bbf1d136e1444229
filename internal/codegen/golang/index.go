package golang

import (
	"context"
	"strconv"

	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/okra-platform/genpipe/internal/codegen/writer"
)

// FactoryIndex writes the package-level factory lookup table that the other
// factory generators register into
type FactoryIndex struct {
	opts Options
}

// NewFactoryIndex creates the index generator
func NewFactoryIndex(opts Options) *FactoryIndex {
	return &FactoryIndex{opts: opts.withDefaults()}
}

func (g *FactoryIndex) Descriptor() codegen.Descriptor {
	return codegen.Descriptor{
		Name:         NameFactoryIndex,
		Role:         codegen.RoleCodeGenerator,
		Priority:     PriorityFactoryIndex,
		RunInDryMode: true,
	}
}

// Generate emits the index file when at least one factory record exists
func (g *FactoryIndex) Generate(ctx context.Context, data []codegen.CodeGeneratorData) ([]*codegen.CodeGenFile, error) {
	count := len(recordsOfKind(data, codegen.DataKindKeyedFactory)) +
		len(recordsOfKind(data, codegen.DataKindEnumKeyedFactory))
	if count == 0 {
		return nil, nil
	}

	w := writer.New("\t")
	w.Linef("package %s", g.opts.Package)
	w.BlankLine()

	w.Comment("factories maps the full name of each factory's key type to its constructor")
	w.Line("var factories = make(map[string]func() any, " + strconv.Itoa(count) + ")")
	w.BlankLine()

	w.Block("func registerFactory(name string, create func() any) {", "}", func() {
		w.Line("factories[name] = create")
	})
	w.BlankLine()

	w.Comment("NewFactory returns a new factory for the key type with the given full name")
	w.Block("func NewFactory(name string) (any, bool) {", "}", func() {
		w.Line("create, ok := factories[name]")
		w.Block("if !ok {", "}", func() {
			w.Line("return nil, false")
		})
		w.Line("return create(), true")
	})
	w.BlankLine()

	w.Comment("FactoryCount returns the number of registered factories")
	w.Block("func FactoryCount() int {", "}", func() {
		w.Line("return len(factories)")
	})

	return []*codegen.CodeGenFile{
		codegen.NewFile(g.opts.IndexFileName(), w.String(), NameFactoryIndex),
	}, nil
}

// registration binds a key type's full name to a factory constructor
type registration struct {
	fullName    string
	constructor string
}

// initFragment renders a func init() registering every entry with the index
func initFragment(entries []registration) string {
	w := writer.New("\t")
	w.Block("func init() {", "}", func() {
		for _, e := range entries {
			w.Linef("registerFactory(%s, func() any { return %s() })", strconv.Quote(e.fullName), e.constructor)
		}
	})
	return w.String()
}
