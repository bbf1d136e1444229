package golang

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/okra-platform/genpipe/internal/codegen/writer"
	"github.com/okra-platform/genpipe/internal/typename"
)

// KeyedFactory renders a map-backed factory per keyed-factory record
type KeyedFactory struct {
	opts Options
}

// NewKeyedFactory creates the keyed factory generator
func NewKeyedFactory(opts Options) *KeyedFactory {
	return &KeyedFactory{opts: opts.withDefaults()}
}

func (g *KeyedFactory) Descriptor() codegen.Descriptor {
	return codegen.Descriptor{
		Name:         NameKeyedFactory,
		Role:         codegen.RoleCodeGenerator,
		Priority:     PriorityKeyedFactory,
		RunInDryMode: true,
	}
}

func (g *KeyedFactory) Generate(ctx context.Context, data []codegen.CodeGeneratorData) ([]*codegen.CodeGenFile, error) {
	records := recordsOfKind(data, codegen.DataKindKeyedFactory)
	if len(records) == 0 {
		return nil, nil
	}

	var (
		files   []*codegen.CodeGenFile
		entries []registration
		seen    = make(map[string]string, len(records))
	)
	for _, rec := range records {
		key, value := rec.KeyType(), rec.ValueType()
		if key == nil || value == nil {
			return nil, errors.New("keyed factory record without key or value type")
		}

		name := factoryName(key, value)
		keyName := typename.FullName(key)
		if prev, ok := seen[name]; ok {
			return nil, errors.Newf("factory %s generated for both %s and %s", name, prev, keyName)
		}
		seen[name] = keyName

		files = append(files, codegen.NewFile(
			g.opts.fileName(name),
			g.render(name, goType(key), goType(value), keyName, typename.FullName(value)),
			NameKeyedFactory,
		))
		entries = append(entries, registration{fullName: keyName, constructor: "New" + name})
	}

	files = append(files, codegen.NewFile(g.opts.IndexFileName(), initFragment(entries), NameKeyedFactory))
	return files, nil
}

func (g *KeyedFactory) render(name, keyType, valueType, keyFull, valueFull string) string {
	w := writer.New("\t")
	w.Linef("package %s", g.opts.Package)
	w.BlankLine()

	w.Linef("// %s creates %s values keyed by %s", name, valueFull, keyFull)
	w.Block("type "+name+" struct {", "}", func() {
		w.Linef("creators map[%s]func() %s", keyType, valueType)
	})
	w.BlankLine()

	w.Linef("// New%s creates an empty factory", name)
	w.Block("func New"+name+"() *"+name+" {", "}", func() {
		w.Linef("return &%s{creators: make(map[%s]func() %s)}", name, keyType, valueType)
	})
	w.BlankLine()

	w.Comment("Register sets the creator for key, replacing any previous one")
	w.Block("func (f *"+name+") Register(key "+keyType+", create func() "+valueType+") {", "}", func() {
		w.Line("f.creators[key] = create")
	})
	w.BlankLine()

	w.Comment("Create returns a new value for key, or false when no creator is registered")
	w.Block("func (f *"+name+") Create(key "+keyType+") ("+valueType+", bool) {", "}", func() {
		w.Line("create, ok := f.creators[key]")
		w.Block("if !ok {", "}", func() {
			w.Linef("var zero %s", valueType)
			w.Line("return zero, false")
		})
		w.Line("return create(), true")
	})
	w.BlankLine()

	w.Comment("Len returns the number of registered keys")
	w.Block("func (f *"+name+") Len() int {", "}", func() {
		w.Line("return len(f.creators)")
	})
	return w.String()
}
