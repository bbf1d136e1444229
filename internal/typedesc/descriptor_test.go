package typedesc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	foo := Plain("Game", "Foo", "Game")
	assert.Equal(t, KindPlain, foo.Kind)
	assert.True(t, foo.Marker.IsZero())

	arr := ArrayOf(foo, 0)
	assert.Equal(t, KindArray, arr.Kind)
	assert.Equal(t, 1, arr.Rank, "rank is clamped to 1")
	assert.Same(t, foo, arr.Elem)

	list := Plain("Collections", "List`1", "Collections")
	gen := GenericOf(list, foo)
	assert.Equal(t, KindGeneric, gen.Kind)
	assert.Same(t, list, gen.Definition)
	require.Len(t, gen.Args, 1)

	nested := NestedIn(foo, "Game", "Inner", "Game")
	assert.Equal(t, KindNested, nested.Kind)
	assert.Same(t, foo, nested.DeclaringType)
}

func TestEnum_CopiesMembers(t *testing.T) {
	members := []string{"Red", "Green"}
	color := Enum("Game", "Color", "Game", members...)
	members[0] = "Blue"

	assert.True(t, color.IsEnum)
	assert.Equal(t, []string{"Red", "Green"}, color.Members)
}

func TestBuiltin(t *testing.T) {
	i := Builtin("Int32")
	assert.True(t, i.IsBuiltin())
	assert.False(t, Plain("Game", "Int32", "Game").IsBuiltin())
	assert.False(t, ArrayOf(i, 1).IsBuiltin())

	// Test: only Builtin marks a descriptor, the namespace alone does not
	assert.False(t, Plain(BuiltinNamespace, "Int32", "Game").IsBuiltin())
	assert.True(t, i.WithMarker(Marker{}).IsBuiltin())
}

func TestWithMarker_LeavesOriginalUntouched(t *testing.T) {
	// Test: descriptors are immutable, WithMarker returns a copy
	value := Plain("Engine", "GameObject", "Engine")
	key := Plain("Game", "Weapon", "Game")

	marked := key.WithMarker(KeyedFactory(value))

	assert.True(t, key.Marker.IsZero())
	assert.Equal(t, MarkerKeyedFactory, marked.Marker.Kind)
	assert.Same(t, value, marked.Marker.Value)
	assert.Equal(t, "keyed-factory", marked.Marker.Kind.String())
}

func TestWalk(t *testing.T) {
	foo := Plain("Game", "Foo", "Game")
	bar := Plain("Game", "Bar", "Game")
	dict := Plain("Collections", "Dictionary`2", "Collections")
	d := GenericOf(dict, ArrayOf(foo, 1), bar)

	var names []string
	d.Walk(func(td *TypeDescriptor) {
		names = append(names, td.Kind.String()+":"+td.Name)
	})

	assert.Equal(t, []string{"generic:Dictionary`2", "array:Foo", "plain:Foo", "plain:Bar"}, names)
}
