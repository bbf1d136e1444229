// Package typename turns type descriptors into deterministic identifiers.
//
// FullName produces the canonical, namespace-qualified name used as a lookup
// key. HumanReadableName produces an identifier-safe name used to build
// generated type and file names. Both are pure: they consult nothing but the
// descriptor they are given.
package typename

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/okra-platform/genpipe/internal/typedesc"
)

// arityMarker separates a generic definition's name from its parameter count
const arityMarker = "`"

// aliases maps builtin descriptor names to their canonical short alias
var aliases = map[string]string{
	"Bool":    "bool",
	"Char":    "char",
	"Float32": "float",
	"Float64": "double",
	"Int8":    "int8",
	"Int16":   "short",
	"Int32":   "int",
	"Int64":   "long",
	"Object":  "object",
	"String":  "string",
	"UInt8":   "byte",
	"UInt16":  "ushort",
	"UInt32":  "uint",
	"UInt64":  "ulong",
}

// Alias returns the canonical short alias of a builtin descriptor
func Alias(d *typedesc.TypeDescriptor) (string, bool) {
	if !d.IsBuiltin() {
		return "", false
	}
	alias, ok := aliases[d.Name]
	return alias, ok
}

// BuiltinNames returns the names Builtin accepts that have an alias, sorted
func BuiltinNames() []string {
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FullName returns the canonical name of d.
//
// Nested types render only their own namespace-qualified name; the declaring
// type chain is not part of the result.
func FullName(d *typedesc.TypeDescriptor) string {
	var sb strings.Builder
	writeFullName(&sb, d)
	return sb.String()
}

func writeFullName(sb *strings.Builder, d *typedesc.TypeDescriptor) {
	if d == nil {
		return
	}

	switch d.Kind {
	case typedesc.KindArray:
		writeFullName(sb, d.Elem)
		sb.WriteString("[")
		sb.WriteString(strings.Repeat(",", max(d.Rank-1, 0)))
		sb.WriteString("]")

	case typedesc.KindGeneric:
		if d.Definition != nil {
			writeFullName(sb, d.Definition)
		} else {
			writeQualified(sb, d)
		}
		sb.WriteString("<")
		for i, arg := range d.Args {
			if i > 0 {
				sb.WriteString(",")
			}
			writeFullName(sb, arg)
		}
		sb.WriteString(">")

	default:
		if alias, ok := Alias(d); ok {
			sb.WriteString(alias)
			return
		}
		writeQualified(sb, d)
	}
}

func writeQualified(sb *strings.Builder, d *typedesc.TypeDescriptor) {
	if d.Namespace != "" {
		sb.WriteString(d.Namespace)
		sb.WriteString(".")
	}
	sb.WriteString(d.Name)
}

// HumanReadableName returns an identifier-safe name for d.
//
// Arrays append "Array" to their element's name regardless of rank, so a
// rank-1 and a rank-2 array of the same element share one name. Generics
// concatenate the definition's name with each argument's name.
func HumanReadableName(d *typedesc.TypeDescriptor) string {
	var sb strings.Builder
	writeHumanReadable(&sb, d)
	return sb.String()
}

func writeHumanReadable(sb *strings.Builder, d *typedesc.TypeDescriptor) {
	if d == nil {
		return
	}

	switch d.Kind {
	case typedesc.KindArray:
		writeHumanReadable(sb, d.Elem)
		sb.WriteString("Array")

	case typedesc.KindGeneric:
		def := d
		if d.Definition != nil {
			def = d.Definition
		}
		sb.WriteString(upperFirst(StripArity(def.Name)))
		for _, arg := range d.Args {
			writeHumanReadable(sb, arg)
		}

	default:
		if alias, ok := Alias(d); ok {
			sb.WriteString(upperFirst(alias))
			return
		}
		sb.WriteString(upperFirst(StripArity(d.Name)))
	}
}

// StripArity removes a trailing arity marker ("List`1" -> "List")
func StripArity(name string) string {
	if i := strings.Index(name, arityMarker); i >= 0 {
		return name[:i]
	}
	return name
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
