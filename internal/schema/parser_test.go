package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/typedesc"
	"github.com/okra-platform/genpipe/internal/typename"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gameSchema = `@genpipe(namespace: "Game", module: "game")

"Anything placed in the world"
type GameObject {
  id: ID!
}

type Weapon @keyedFactory(value: "GameObject") {
  damage: Int!
}

enum WeaponKind @enumFactory(value: "Weapon") {
  Sword
  Bow
}

scalar Vector3 @namespace(name: "UnityEngine") @module(name: "unity")

type Inventory {
  size: Int
}

type Slot @nestedIn(type: "Inventory") @keyedFactory(value: "Dictionary<Int, List<GameObject>>") {
  index: Int
}
`

func TestParseSchema_Declarations(t *testing.T) {
	// Test plan:
	// - header metadata is read from the synthetic type
	// - types, enums and scalars are kept in declaration order
	// - enum members and directives are captured

	s, err := ParseSchema(gameSchema)
	require.NoError(t, err)

	assert.Equal(t, Metadata{Namespace: "Game", Module: "game"}, s.Meta)
	require.Len(t, s.Declarations, 6)

	names := make([]string, 0, len(s.Declarations))
	for _, d := range s.Declarations {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"GameObject", "Weapon", "WeaponKind", "Vector3", "Inventory", "Slot"}, names)

	assert.Equal(t, "Anything placed in the world", s.Declarations[0].Doc)
	assert.Equal(t, DeclEnum, s.Declarations[2].Kind)
	assert.Equal(t, []string{"Sword", "Bow"}, s.Declarations[2].Members)
	assert.Equal(t, DeclScalar, s.Declarations[3].Kind)

	dir, ok := s.Declarations[1].Directive(DirectiveKeyedFactory)
	require.True(t, ok)
	assert.Equal(t, "GameObject", dir.Args["value"])

	_, ok = s.Declarations[0].Directive(DirectiveKeyedFactory)
	assert.False(t, ok)
}

func TestParse_Descriptors(t *testing.T) {
	ds, err := Parse(gameSchema)
	require.NoError(t, err)
	require.Len(t, ds, 6)

	// Test: header defaults apply unless overridden per declaration
	gameObject := ds[0]
	assert.Equal(t, "Game.GameObject", typename.FullName(gameObject))
	assert.Equal(t, "game", gameObject.Module)
	assert.True(t, gameObject.Marker.IsZero())

	vector := ds[3]
	assert.Equal(t, "UnityEngine.Vector3", typename.FullName(vector))
	assert.Equal(t, "unity", vector.Module)

	// Test: keyed factory marker resolves to the declared descriptor
	weapon := ds[1]
	assert.Equal(t, typedesc.MarkerKeyedFactory, weapon.Marker.Kind)
	assert.Same(t, gameObject, weapon.Marker.Value)

	kind := ds[2]
	assert.True(t, kind.IsEnum)
	assert.Equal(t, []string{"Sword", "Bow"}, kind.Members)
	assert.Equal(t, typedesc.MarkerEnumKeyedFactory, kind.Marker.Kind)
	assert.Equal(t, "Game.Weapon", typename.FullName(kind.Marker.Value))
	assert.True(t, kind.Marker.Value.Marker.IsZero(), "marker values reference unmarked descriptors")

	// Test: nested types keep their declaring type but not in the full name
	slot := ds[5]
	assert.Equal(t, typedesc.KindNested, slot.Kind)
	assert.Equal(t, "Inventory", slot.DeclaringType.Name)
	assert.Equal(t, "Game.Slot", typename.FullName(slot))

	// Test: generic marker values resolve scalars and collections
	value := slot.Marker.Value
	assert.Equal(t, "Collections.Dictionary`2<int,Collections.List`1<Game.GameObject>>", typename.FullName(value))
	assert.Equal(t, "DictionaryIntListGameObject", typename.HumanReadableName(value))
}

func TestParse_MarkerValueMayReferenceLaterDeclaration(t *testing.T) {
	ds, err := Parse(`
type Spawner @keyedFactory(value: "Enemy[]") { id: ID }
type Enemy { id: ID }
`)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "Enemy[]", typename.FullName(ds[0].Marker.Value))
}

func TestParse_NestedEnum(t *testing.T) {
	ds, err := Parse(`
type Outer { id: ID }
enum Mode @nestedIn(type: "Outer") { On Off }
`)
	require.NoError(t, err)
	mode := ds[1]
	assert.Equal(t, typedesc.KindNested, mode.Kind)
	assert.True(t, mode.IsEnum)
	assert.Equal(t, []string{"On", "Off"}, mode.Members)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		sentinel error
	}{
		{
			name:  "invalid graphql",
			input: `type { }`,
			want:  "failed to parse GraphQL",
		},
		{
			name:     "unknown marker type",
			input:    `type A @keyedFactory(value: "Missing") { id: ID }`,
			want:     "type A: @keyedFactory: Missing: unknown type",
			sentinel: ErrUnknownType,
		},
		{
			name:     "malformed marker expression",
			input:    `type A @keyedFactory(value: "List<A") { id: ID }`,
			sentinel: ErrTypeSyntax,
		},
		{
			name:     "type arguments on a declared type",
			input:    "type GameObject { id: ID }\ntype Weapon @keyedFactory(value: \"GameObject<Int, String>\") { id: ID }",
			want:     "GameObject is not generic",
			sentinel: ErrTypeSyntax,
		},
		{
			name:  "reserved namespace",
			input: `type String @namespace(name: "builtin") { id: ID }`,
			want:  `namespace "builtin" is reserved`,
		},
		{
			name:  "reserved schema namespace",
			input: "@genpipe(namespace: \"builtin\")\n\ntype Weapon { id: ID }",
			want:  `namespace "builtin" is reserved`,
		},
		{
			name:  "missing marker value",
			input: `type A @keyedFactory { id: ID }`,
			want:  "requires a value argument",
		},
		{
			name:  "both markers",
			input: `enum A @keyedFactory(value: "Int") @enumFactory(value: "Int") { X }`,
			want:  "cannot be combined",
		},
		{
			name:  "duplicate declaration",
			input: "type A { id: ID }\nenum A { X }",
			want:  "A declared more than once",
		},
		{
			name:     "unknown declaring type",
			input:    `type A @nestedIn(type: "Nowhere") { id: ID }`,
			sentinel: ErrUnknownType,
		},
		{
			name:  "nesting cycle",
			input: "type A @nestedIn(type: \"B\") { id: ID }\ntype B @nestedIn(type: \"A\") { id: ID }",
			want:  "forms a cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
			if tt.sentinel != nil {
				assert.True(t, errors.Is(err, tt.sentinel), "%v", err)
			}
		})
	}
}

func TestParse_EmptySchema(t *testing.T) {
	ds, err := Parse(`@genpipe(namespace: "Empty")`)
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "types.gql")
	require.NoError(t, os.WriteFile(path, []byte(gameSchema), 0644))
	ds, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, ds, 6)

	// Test: missing and empty files are reported with their path
	_, err = Load(filepath.Join(dir, "missing.gql"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema file not found")
	assert.NotEmpty(t, errors.GetAllHints(err))

	empty := filepath.Join(dir, "empty.gql")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = Load(empty)
	assert.ErrorContains(t, err, "schema file is empty")

	bad := filepath.Join(dir, "bad.gql")
	require.NoError(t, os.WriteFile(bad, []byte(`type A @keyedFactory(value: "Nope") { id: ID }`), 0644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, bad)
}
