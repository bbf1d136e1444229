// Package schema is the symbol provider: it reads a GraphQL SDL schema and
// produces the type descriptors, with generation markers, that a run works on.
package schema

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/typedesc"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/ast"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astparser"
)

// Load reads and resolves the schema file at path
func Load(path string) ([]*typedesc.TypeDescriptor, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithHint(
				errors.Newf("schema file not found: %s", path),
				"set \"schema\" in genpipe.json or create the file",
			)
		}
		return nil, errors.Wrapf(err, "failed to read schema file %s", path)
	}
	if len(content) == 0 {
		return nil, errors.Newf("schema file is empty: %s", path)
	}

	ds, err := Parse(string(content))
	if err != nil {
		return nil, errors.Wrapf(err, "schema %s", path)
	}
	return ds, nil
}

// Parse parses and resolves a schema document into descriptors in
// declaration order
func Parse(input string) ([]*typedesc.TypeDescriptor, error) {
	s, err := ParseSchema(input)
	if err != nil {
		return nil, err
	}
	return Resolve(s)
}

// ParseSchema parses a schema document (after preprocessing) into the
// declaration model without resolving any type references
func ParseSchema(input string) (*Schema, error) {
	preprocessed := PreprocessGraphQL(input)

	doc, report := astparser.ParseGraphqlDocumentString(preprocessed)
	if report.HasErrors() {
		return nil, errors.Newf("failed to parse GraphQL: %v", report)
	}

	s := &Schema{Declarations: []Declaration{}}

	for i := range doc.RootNodes {
		node := &doc.RootNodes[i]
		switch node.Kind {
		case ast.NodeKindObjectTypeDefinition:
			typeDef := doc.ObjectTypeDefinitions[node.Ref]
			name := doc.Input.ByteSliceString(typeDef.Name)
			if name == metaTypeName {
				parseMetadata(&doc, typeDef, s)
				continue
			}
			s.Declarations = append(s.Declarations, Declaration{
				Name:       name,
				Kind:       DeclObject,
				Doc:        getDescription(&doc, typeDef.Description),
				Directives: parseDirectives(&doc, typeDef.Directives),
			})

		case ast.NodeKindEnumTypeDefinition:
			enumDef := doc.EnumTypeDefinitions[node.Ref]
			decl := Declaration{
				Name:       doc.Input.ByteSliceString(enumDef.Name),
				Kind:       DeclEnum,
				Doc:        getDescription(&doc, enumDef.Description),
				Members:    []string{},
				Directives: parseDirectives(&doc, enumDef.Directives),
			}
			for _, valueRef := range enumDef.EnumValuesDefinition.Refs {
				valueDef := doc.EnumValueDefinitions[valueRef]
				decl.Members = append(decl.Members, doc.Input.ByteSliceString(valueDef.EnumValue))
			}
			s.Declarations = append(s.Declarations, decl)

		case ast.NodeKindScalarTypeDefinition:
			scalarDef := doc.ScalarTypeDefinitions[node.Ref]
			s.Declarations = append(s.Declarations, Declaration{
				Name:       doc.Input.ByteSliceString(scalarDef.Name),
				Kind:       DeclScalar,
				Doc:        getDescription(&doc, scalarDef.Description),
				Directives: parseDirectives(&doc, scalarDef.Directives),
			})
		}
	}

	return s, nil
}

func parseMetadata(doc *ast.Document, typeDef ast.ObjectTypeDefinition, s *Schema) {
	for _, fieldRef := range typeDef.FieldsDefinition.Refs {
		fieldDef := doc.FieldDefinitions[fieldRef]
		for _, directiveRef := range fieldDef.Directives.Refs {
			directive := doc.Directives[directiveRef]
			if doc.Input.ByteSliceString(directive.Name) != "genpipe" {
				continue
			}
			args := parseDirectiveArgs(doc, directive)
			s.Meta.Namespace = args["namespace"]
			s.Meta.Module = args["module"]
			return
		}
	}
}

func parseDirectives(doc *ast.Document, directives ast.DirectiveList) []Directive {
	result := []Directive{}
	for _, directiveRef := range directives.Refs {
		directive := doc.Directives[directiveRef]
		result = append(result, Directive{
			Name: doc.Input.ByteSliceString(directive.Name),
			Args: parseDirectiveArgs(doc, directive),
		})
	}
	return result
}

func parseDirectiveArgs(doc *ast.Document, directive ast.Directive) map[string]string {
	args := make(map[string]string)
	for _, argRef := range directive.Arguments.Refs {
		arg := doc.Arguments[argRef]
		args[doc.Input.ByteSliceString(arg.Name)] = parseValue(doc, doc.ArgumentValue(argRef))
	}
	return args
}

func parseValue(doc *ast.Document, value ast.Value) string {
	switch value.Kind {
	case ast.ValueKindString:
		return doc.StringValueContentString(value.Ref)

	case ast.ValueKindEnum:
		if value.Ref >= 0 && value.Ref < len(doc.EnumValues) {
			return doc.Input.ByteSliceString(doc.EnumValues[value.Ref].Name)
		}

	case ast.ValueKindBoolean:
		if value.Ref >= 0 && value.Ref < len(doc.BooleanValues) {
			if doc.BooleanValues[value.Ref] {
				return "true"
			}
			return "false"
		}

	case ast.ValueKindInteger:
		return fmt.Sprintf("%d", doc.IntValueAsInt(value.Ref))
	}

	return ""
}

func getDescription(doc *ast.Document, desc ast.Description) string {
	if !desc.IsDefined {
		return ""
	}
	return strings.TrimSpace(doc.Input.ByteSliceString(desc.Content))
}
