package schema

import (
	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/typedesc"
	"github.com/okra-platform/genpipe/internal/typename"
)

// Directive names understood on declarations
const (
	DirectiveNamespace    = "namespace"
	DirectiveModule       = "module"
	DirectiveNestedIn     = "nestedIn"
	DirectiveKeyedFactory = "keyedFactory"
	DirectiveEnumFactory  = "enumFactory"
)

// CollectionsNamespace holds the generic collection definitions
const CollectionsNamespace = "Collections"

// graphqlScalars maps the GraphQL built-in scalars to builtin descriptor names
var graphqlScalars = map[string]string{
	"Int":     "Int32",
	"Float":   "Float64",
	"String":  "String",
	"Boolean": "Bool",
	"ID":      "String",
}

type genericDefinition struct {
	desc  *typedesc.TypeDescriptor
	arity int
}

// genericDefinitions are the collection generics every schema can use
var genericDefinitions = map[string]genericDefinition{
	"List":       {desc: typedesc.Plain(CollectionsNamespace, "List`1", typedesc.BuiltinNamespace), arity: 1},
	"Dictionary": {desc: typedesc.Plain(CollectionsNamespace, "Dictionary`2", typedesc.BuiltinNamespace), arity: 2},
}

var builtinNames = func() map[string]struct{} {
	names := make(map[string]struct{})
	for _, n := range typename.BuiltinNames() {
		names[n] = struct{}{}
	}
	return names
}()

// scope resolves names used in type expressions. Declared types win over
// GraphQL scalars, which win over builtin names.
type scope struct {
	declared map[string]*typedesc.TypeDescriptor
}

func (s *scope) lookup(name string) (*typedesc.TypeDescriptor, bool) {
	if d, ok := s.declared[name]; ok {
		return d, true
	}
	if b, ok := graphqlScalars[name]; ok {
		return typedesc.Builtin(b), true
	}
	if _, ok := builtinNames[name]; ok {
		return typedesc.Builtin(name), true
	}
	return nil, false
}

// genericDefinition returns the collection generic called name. Declared
// types and scalars take no type arguments.
func (s *scope) genericDefinition(name string, arity int) (*typedesc.TypeDescriptor, error) {
	if _, ok := s.lookup(name); ok {
		return nil, errors.Wrapf(ErrTypeSyntax, "%s is not generic", name)
	}
	def, ok := genericDefinitions[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "generic %s", name)
	}
	if def.arity != arity {
		return nil, errors.Wrapf(ErrTypeSyntax, "%s takes %d type arguments, got %d", name, def.arity, arity)
	}
	return def.desc, nil
}

// Resolve turns declarations into descriptors in declaration order. Marker
// values may reference any declaration regardless of position.
func Resolve(s *Schema) ([]*typedesc.TypeDescriptor, error) {
	r := &resolver{
		schema:    s,
		decls:     make(map[string]*Declaration, len(s.Declarations)),
		base:      make(map[string]*typedesc.TypeDescriptor, len(s.Declarations)),
		resolving: make(map[string]bool),
	}

	for i := range s.Declarations {
		decl := &s.Declarations[i]
		if _, dup := r.decls[decl.Name]; dup {
			return nil, errors.Newf("%s declared more than once", decl.Name)
		}
		r.decls[decl.Name] = decl
	}

	sc := &scope{declared: make(map[string]*typedesc.TypeDescriptor, 2*len(s.Declarations))}
	for _, decl := range s.Declarations {
		d, err := r.resolveBase(decl.Name)
		if err != nil {
			return nil, err
		}
		sc.declared[decl.Name] = d
		if d.Namespace != "" {
			sc.declared[d.Namespace+"."+d.Name] = d
		}
	}

	out := make([]*typedesc.TypeDescriptor, 0, len(s.Declarations))
	var errs error
	for _, decl := range s.Declarations {
		d := r.base[decl.Name]
		m, err := markerOf(decl, sc)
		if err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "%s %s", decl.Kind, decl.Name))
			continue
		}
		if !m.IsZero() {
			d = d.WithMarker(m)
		}
		out = append(out, d)
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

type resolver struct {
	schema    *Schema
	decls     map[string]*Declaration
	base      map[string]*typedesc.TypeDescriptor
	resolving map[string]bool
}

// resolveBase builds the unmarked descriptor for name, resolving the
// declaring type of nested declarations first
func (r *resolver) resolveBase(name string) (*typedesc.TypeDescriptor, error) {
	if d, ok := r.base[name]; ok {
		return d, nil
	}
	decl, ok := r.decls[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "%s", name)
	}
	if r.resolving[name] {
		return nil, errors.Newf("%s: @%s forms a cycle", name, DirectiveNestedIn)
	}
	r.resolving[name] = true
	defer delete(r.resolving, name)

	ns := r.schema.Meta.Namespace
	if dir, ok := decl.Directive(DirectiveNamespace); ok {
		ns = dir.Args["name"]
	}
	if ns == typedesc.BuiltinNamespace {
		return nil, errors.Newf("%s: namespace %q is reserved for builtin types", name, ns)
	}
	module := r.schema.Meta.Module
	if dir, ok := decl.Directive(DirectiveModule); ok {
		module = dir.Args["name"]
	}

	var d *typedesc.TypeDescriptor
	if dir, ok := decl.Directive(DirectiveNestedIn); ok {
		outer := dir.Args["type"]
		if outer == "" {
			return nil, errors.Newf("%s: @%s requires a type argument", name, DirectiveNestedIn)
		}
		declaring, err := r.resolveBase(outer)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: @%s", name, DirectiveNestedIn)
		}
		d = typedesc.NestedIn(declaring, ns, name, module)
		if decl.Kind == DeclEnum {
			d.IsEnum = true
			d.Members = append([]string(nil), decl.Members...)
		}
	} else if decl.Kind == DeclEnum {
		d = typedesc.Enum(ns, name, module, decl.Members...)
	} else {
		d = typedesc.Plain(ns, name, module)
	}

	r.base[name] = d
	return d, nil
}

// markerOf returns the generation marker a declaration's directives ask for
func markerOf(decl Declaration, sc *scope) (typedesc.Marker, error) {
	keyed, hasKeyed := decl.Directive(DirectiveKeyedFactory)
	enum, hasEnum := decl.Directive(DirectiveEnumFactory)

	switch {
	case hasKeyed && hasEnum:
		return typedesc.Marker{}, errors.Newf("@%s and @%s cannot be combined", DirectiveKeyedFactory, DirectiveEnumFactory)
	case hasKeyed:
		value, err := markerValue(keyed, sc)
		if err != nil {
			return typedesc.Marker{}, err
		}
		return typedesc.KeyedFactory(value), nil
	case hasEnum:
		value, err := markerValue(enum, sc)
		if err != nil {
			return typedesc.Marker{}, err
		}
		return typedesc.EnumKeyedFactory(value), nil
	default:
		return typedesc.Marker{}, nil
	}
}

func markerValue(dir Directive, sc *scope) (*typedesc.TypeDescriptor, error) {
	expr, ok := dir.Args["value"]
	if !ok || expr == "" {
		return nil, errors.Newf("@%s requires a value argument", dir.Name)
	}
	d, err := parseTypeExpr(expr, sc)
	if err != nil {
		return nil, errors.Wrapf(err, "@%s", dir.Name)
	}
	return d, nil
}
