// Package golang renders Go source for factory records.
//
// Every file is placed under a directory named after the target package.
// FactoryIndex owns the package clause of the shared index file; the other
// generators contribute init fragments to it under the same FileName, and
// MergeFilesByName joins them in generator priority order.
package golang

import (
	"path"
	"strings"
	"unicode"

	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/okra-platform/genpipe/internal/typedesc"
	"github.com/okra-platform/genpipe/internal/typename"
)

// Names of the built-in Go generators
const (
	NameFactoryIndex     = "FactoryIndex"
	NameKeyedFactory     = "KeyedFactory"
	NameEnumKeyedFactory = "EnumKeyedFactory"
	NameTypeNameTable    = "TypeNameTable"
)

// Priorities of the built-in Go generators
const (
	PriorityFactoryIndex     = 0
	PriorityKeyedFactory     = 10
	PriorityEnumKeyedFactory = 20
	PriorityTypeNameTable    = 30
)

// DefaultExtension is used when Options.Extension is empty
const DefaultExtension = ".gen.go"

// Options are shared by the Go generators
type Options struct {
	// Package is the Go package name and the directory files are placed in
	Package string

	// Extension is appended to every generated file name
	Extension string
}

func (o Options) withDefaults() Options {
	if o.Package == "" {
		o.Package = "generated"
	}
	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
	return o
}

// fileName returns the relative path of a generated file
func (o Options) fileName(base string) string {
	return path.Join(o.Package, base+o.Extension)
}

// IndexFileName returns the relative path of the shared factory index
func (o Options) IndexFileName() string {
	return o.withDefaults().fileName("factories")
}

// builtinGoTypes maps builtin aliases to Go types
var builtinGoTypes = map[string]string{
	"bool":   "bool",
	"byte":   "byte",
	"char":   "rune",
	"double": "float64",
	"float":  "float32",
	"int":    "int32",
	"int8":   "int8",
	"long":   "int64",
	"object": "any",
	"short":  "int16",
	"string": "string",
	"uint":   "uint32",
	"ulong":  "uint64",
	"ushort": "uint16",
}

// goType renders d as a Go type expression
func goType(d *typedesc.TypeDescriptor) string {
	if d == nil {
		return "any"
	}

	switch d.Kind {
	case typedesc.KindArray:
		return strings.Repeat("[]", d.Rank) + goType(d.Elem)

	case typedesc.KindGeneric:
		def := d.Name
		if d.Definition != nil {
			def = d.Definition.Name
		}
		switch {
		case typename.StripArity(def) == "List" && len(d.Args) == 1:
			return "[]" + goType(d.Args[0])
		case typename.StripArity(def) == "Dictionary" && len(d.Args) == 2:
			return "map[" + goType(d.Args[0]) + "]" + goType(d.Args[1])
		}
		return identifier(typename.HumanReadableName(d))
	}

	if alias, ok := typename.Alias(d); ok {
		if t, ok := builtinGoTypes[alias]; ok {
			return t
		}
		return "any"
	}
	return identifier(typename.HumanReadableName(d))
}

// identifier makes s a valid exported Go identifier
func identifier(s string) string {
	var sb strings.Builder
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) || r == '_':
			if i == 0 {
				r = unicode.ToUpper(r)
			}
			sb.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				sb.WriteRune('X')
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "X"
	}
	return sb.String()
}

// factoryName returns the generated type name of a factory from key to value
func factoryName(key, value *typedesc.TypeDescriptor) string {
	return identifier(typename.HumanReadableName(key) + typename.HumanReadableName(value) + "Factory")
}

// recordsOfKind returns the records with the given kind, in order
func recordsOfKind(data []codegen.CodeGeneratorData, kind string) []codegen.CodeGeneratorData {
	var out []codegen.CodeGeneratorData
	for _, d := range data {
		if d.Kind() == kind {
			out = append(out, d)
		}
	}
	return out
}
