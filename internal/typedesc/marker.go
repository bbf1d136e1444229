package typedesc

// MarkerKind enumerates the generation markers a symbol provider can attach
type MarkerKind int

const (
	MarkerNone MarkerKind = iota
	MarkerKeyedFactory
	MarkerEnumKeyedFactory
)

// String returns a human-readable representation of the MarkerKind
func (k MarkerKind) String() string {
	switch k {
	case MarkerNone:
		return "none"
	case MarkerKeyedFactory:
		return "keyed-factory"
	case MarkerEnumKeyedFactory:
		return "enum-keyed-factory"
	default:
		return "unknown"
	}
}

// Marker is a tagged variant attached to a descriptor. The zero value is
// "no marker". Value is the factory value type for both factory kinds.
type Marker struct {
	Kind  MarkerKind
	Value *TypeDescriptor
}

// KeyedFactory marks the descriptor as the key of a factory producing value
func KeyedFactory(value *TypeDescriptor) Marker {
	return Marker{Kind: MarkerKeyedFactory, Value: value}
}

// EnumKeyedFactory marks an enum descriptor as the key of a factory producing value
func EnumKeyedFactory(value *TypeDescriptor) Marker {
	return Marker{Kind: MarkerEnumKeyedFactory, Value: value}
}

// IsZero reports whether no marker is set
func (m Marker) IsZero() bool {
	return m.Kind == MarkerNone
}
