// Package typedesc describes the types a generation run operates on.
//
// A TypeDescriptor is produced once per run by a symbol provider (see
// internal/schema) and is never mutated afterwards. Descriptors form a small
// tree: arrays point at their element, generics at their definition and type
// arguments, nested types at their declaring type.
package typedesc

// CacheKey is the run cache key under which the symbol provider stores the
// ordered []*TypeDescriptor visible to a run.
const CacheKey = "typedesc.descriptors"

// BuiltinNamespace is the namespace of the primitive descriptors created by
// Builtin.
const BuiltinNamespace = "builtin"

// Kind is the structural kind of a TypeDescriptor
type Kind int

const (
	KindPlain   Kind = iota // named, non-generic type
	KindArray               // array of Elem with Rank dimensions
	KindGeneric             // constructed generic: Definition<Args...>
	KindNested              // type declared inside DeclaringType
)

// String returns a human-readable representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindArray:
		return "array"
	case KindGeneric:
		return "generic"
	case KindNested:
		return "nested"
	default:
		return "unknown"
	}
}

// TypeDescriptor is an immutable description of a type.
//
// Only the fields relevant to Kind are set: Rank and Elem for arrays,
// Definition and Args for generics, DeclaringType for nested types.
type TypeDescriptor struct {
	Name      string // simple name, may carry an arity marker ("List`1")
	Namespace string // dot separated, empty for the global namespace
	Module    string // owning module identifier
	Kind      Kind

	Rank int
	Elem *TypeDescriptor

	Definition *TypeDescriptor
	Args       []*TypeDescriptor

	DeclaringType *TypeDescriptor

	// Members lists enum members in declaration order; nil for non-enums.
	Members []string
	IsEnum  bool

	Marker Marker

	builtin bool
}

// Plain creates a named, non-generic descriptor
func Plain(namespace, name, module string) *TypeDescriptor {
	return &TypeDescriptor{Name: name, Namespace: namespace, Module: module, Kind: KindPlain}
}

// Enum creates a plain descriptor for an enum with the given members
func Enum(namespace, name, module string, members ...string) *TypeDescriptor {
	d := Plain(namespace, name, module)
	d.IsEnum = true
	d.Members = append([]string(nil), members...)
	return d
}

// Builtin creates a primitive descriptor in BuiltinNamespace, e.g. Builtin("Int32")
func Builtin(name string) *TypeDescriptor {
	d := Plain(BuiltinNamespace, name, BuiltinNamespace)
	d.builtin = true
	return d
}

// ArrayOf creates an array descriptor. Ranks below 1 are treated as 1.
func ArrayOf(elem *TypeDescriptor, rank int) *TypeDescriptor {
	if rank < 1 {
		rank = 1
	}
	return &TypeDescriptor{
		Name:      elem.Name,
		Namespace: elem.Namespace,
		Module:    elem.Module,
		Kind:      KindArray,
		Rank:      rank,
		Elem:      elem,
	}
}

// GenericOf creates a constructed generic descriptor over def
func GenericOf(def *TypeDescriptor, args ...*TypeDescriptor) *TypeDescriptor {
	return &TypeDescriptor{
		Name:       def.Name,
		Namespace:  def.Namespace,
		Module:     def.Module,
		Kind:       KindGeneric,
		Definition: def,
		Args:       append([]*TypeDescriptor(nil), args...),
	}
}

// NestedIn creates a descriptor for a type declared inside declaring
func NestedIn(declaring *TypeDescriptor, namespace, name, module string) *TypeDescriptor {
	return &TypeDescriptor{
		Name:          name,
		Namespace:     namespace,
		Module:        module,
		Kind:          KindNested,
		DeclaringType: declaring,
	}
}

// WithMarker returns a shallow copy of d carrying m. The receiver is left untouched.
func (d *TypeDescriptor) WithMarker(m Marker) *TypeDescriptor {
	c := *d
	c.Marker = m
	return &c
}

// IsBuiltin reports whether d is a primitive created by Builtin. Other
// descriptors in BuiltinNamespace are not.
func (d *TypeDescriptor) IsBuiltin() bool {
	return d != nil && d.builtin
}

// Walk calls fn for d and, depth first, every descriptor it references through
// Elem and Args. Generic definitions and DeclaringType are not followed.
func (d *TypeDescriptor) Walk(fn func(*TypeDescriptor)) {
	if d == nil {
		return
	}
	fn(d)
	switch d.Kind {
	case KindArray:
		d.Elem.Walk(fn)
	case KindGeneric:
		for _, a := range d.Args {
			a.Walk(fn)
		}
	}
}
