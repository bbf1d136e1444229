package golang

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/okra-platform/genpipe/internal/codegen/writer"
	"github.com/okra-platform/genpipe/internal/typename"
)

// EnumKeyedFactory renders a factory with one creator field per enum member
type EnumKeyedFactory struct {
	opts Options
}

// NewEnumKeyedFactory creates the enum-keyed factory generator
func NewEnumKeyedFactory(opts Options) *EnumKeyedFactory {
	return &EnumKeyedFactory{opts: opts.withDefaults()}
}

func (g *EnumKeyedFactory) Descriptor() codegen.Descriptor {
	return codegen.Descriptor{
		Name:         NameEnumKeyedFactory,
		Role:         codegen.RoleCodeGenerator,
		Priority:     PriorityEnumKeyedFactory,
		RunInDryMode: true,
	}
}

func (g *EnumKeyedFactory) Generate(ctx context.Context, data []codegen.CodeGeneratorData) ([]*codegen.CodeGenFile, error) {
	records := recordsOfKind(data, codegen.DataKindEnumKeyedFactory)
	if len(records) == 0 {
		return nil, nil
	}

	var (
		files   []*codegen.CodeGenFile
		entries []registration
		seen    = make(map[string]string, len(records))
	)
	for _, rec := range records {
		enum, value := rec.EnumType(), rec.ValueType()
		if enum == nil || value == nil {
			return nil, errors.New("enum factory record without enum or value type")
		}

		name := factoryName(enum, value)
		enumName := typename.FullName(enum)
		if prev, ok := seen[name]; ok {
			return nil, errors.Newf("factory %s generated for both %s and %s", name, prev, enumName)
		}
		seen[name] = enumName

		fields, err := memberFields(enum.Members)
		if err != nil {
			return nil, errors.Wrapf(err, "enum %s", enumName)
		}

		files = append(files, codegen.NewFile(
			g.opts.fileName(name),
			g.render(name, goType(value), enumName, typename.FullName(value), enum.Members, fields),
			NameEnumKeyedFactory,
		))
		entries = append(entries, registration{fullName: enumName, constructor: "New" + name})
	}

	files = append(files, codegen.NewFile(g.opts.IndexFileName(), initFragment(entries), NameEnumKeyedFactory))
	return files, nil
}

// memberFields maps enum members to distinct exported field names
func memberFields(members []string) ([]string, error) {
	fields := make([]string, len(members))
	owner := make(map[string]string, len(members))
	for i, m := range members {
		f := identifier(m)
		if prev, ok := owner[f]; ok {
			return nil, errors.Newf("members %s and %s both map to field %s", prev, m, f)
		}
		owner[f] = m
		fields[i] = f
	}
	return fields, nil
}

func (g *EnumKeyedFactory) render(name, valueType, enumFull, valueFull string, members, fields []string) string {
	w := writer.New("\t")
	w.Linef("package %s", g.opts.Package)
	w.BlankLine()

	w.Linef("// %s holds a %s creator for each member of %s", name, valueFull, enumFull)
	w.Block("type "+name+" struct {", "}", func() {
		for _, f := range fields {
			w.Linef("%s func() %s", f, valueType)
		}
	})
	w.BlankLine()

	w.Linef("// New%s creates a factory with no creators set", name)
	w.Block("func New"+name+"() *"+name+" {", "}", func() {
		w.Linef("return &%s{}", name)
	})
	w.BlankLine()

	w.Comment("Lookup returns the creator of the named member, or false when it is unknown or unset")
	w.Block("func (f *"+name+") Lookup(name string) (func() "+valueType+", bool) {", "}", func() {
		w.Line("switch name {")
		for i, m := range members {
			w.Linef("case %s:", strconv.Quote(m))
			w.Indent()
			w.Linef("return f.%s, f.%s != nil", fields[i], fields[i])
			w.Dedent()
		}
		w.Line("}")
		w.Line("return nil, false")
	})
	w.BlankLine()

	w.Comment("Create returns a new value for the named member")
	w.Block("func (f *"+name+") Create(name string) ("+valueType+", bool) {", "}", func() {
		w.Line("create, ok := f.Lookup(name)")
		w.Block("if !ok {", "}", func() {
			w.Linef("var zero %s", valueType)
			w.Line("return zero, false")
		})
		w.Line("return create(), true")
	})
	w.BlankLine()

	w.Comment("Members returns the member names in declaration order")
	w.Block("func (f *"+name+") Members() []string {", "}", func() {
		quoted := make([]string, len(members))
		for i, m := range members {
			quoted[i] = strconv.Quote(m)
		}
		w.Print("return []string{")
		for i, q := range quoted {
			if i > 0 {
				w.Print(", ")
			}
			w.Print(q)
		}
		w.Line("}")
	})
	return w.String()
}
