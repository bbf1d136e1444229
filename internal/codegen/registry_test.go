package codegen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGenerator is a test code generator
type mockGenerator struct {
	desc Descriptor
}

func (m *mockGenerator) Descriptor() Descriptor {
	return m.desc
}

func (m *mockGenerator) Generate(ctx context.Context, data []CodeGeneratorData) ([]*CodeGenFile, error) {
	return []*CodeGenFile{NewFile("mock.gen", "mock output", m.desc.Name)}, nil
}

// mockPostProcessor is a test post-processor
type mockPostProcessor struct {
	desc Descriptor
}

func (m *mockPostProcessor) Descriptor() Descriptor {
	return m.desc
}

func (m *mockPostProcessor) PostProcess(ctx context.Context, files []*CodeGenFile) ([]*CodeGenFile, error) {
	return files, nil
}

func generator(name string, priority int) *mockGenerator {
	return &mockGenerator{desc: Descriptor{Name: name, Role: RoleCodeGenerator, Priority: priority}}
}

func postProcessor(name string, priority int) *mockPostProcessor {
	return &mockPostProcessor{desc: Descriptor{Name: name, Role: RolePostProcessor, Priority: priority}}
}

func TestRegistry_NewRegistry(t *testing.T) {
	// Test: New registry is empty by default
	r := NewRegistry()
	assert.NotNil(t, r)

	for _, role := range Roles {
		assert.Empty(t, r.Ordered(role))
	}
	_, ok := r.Get(RoleCodeGenerator, "unknown")
	assert.False(t, ok)
}

func TestRegistry_Register(t *testing.T) {
	// Test: Register custom generator
	r := NewRegistry()

	require.NoError(t, r.Register(generator("mock", 0)))

	p, ok := r.Get(RoleCodeGenerator, "mock")
	require.True(t, ok)
	assert.Equal(t, "mock", p.Descriptor().Name)
}

func TestRegistry_RegisterSameRoleMultiple(t *testing.T) {
	// Test: several plugins may share a role
	r := NewRegistry()
	require.NoError(t, r.Register(generator("a", 0)))
	require.NoError(t, r.Register(generator("b", 0)))

	assert.Len(t, r.Ordered(RoleCodeGenerator), 2)
}

func TestRegistry_RegisterErrors(t *testing.T) {
	t.Run("duplicate name within role", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(generator("dup", 0)))

		err := r.Register(generator("dup", 5))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("same name in another role is allowed", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(generator("same", 0)))
		require.NoError(t, r.Register(postProcessor("same", 0)))
	})

	t.Run("declared role not implemented", func(t *testing.T) {
		r := NewRegistry()
		p := &mockGenerator{desc: Descriptor{Name: "liar", Role: RolePostProcessor}}

		err := r.Register(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not implement")
	})

	t.Run("missing name", func(t *testing.T) {
		r := NewRegistry()
		assert.Error(t, r.Register(generator("", 0)))
	})
}

func TestRegistry_OrderedByPriorityThenName(t *testing.T) {
	// Test: ascending priority, ties broken by name regardless of registration order
	r := NewRegistry()
	r.MustRegister(
		postProcessor("WriteToDisk", 100),
		postProcessor("Zeta", 50),
		postProcessor("AddFileHeader", 0),
		postProcessor("Alpha", 50),
		postProcessor("MergeFilesByName", 99),
	)

	assert.Equal(t,
		[]string{"AddFileHeader", "Alpha", "Zeta", "MergeFilesByName", "WriteToDisk"},
		r.Names(RolePostProcessor),
	)
}

func TestRegistry_Filter(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(generator("c", 30), generator("a", 10), generator("b", 20))

	tests := []struct {
		name    string
		enabled []string
		want    []string
	}{
		{name: "nil selects all", enabled: nil, want: []string{"a", "b", "c"}},
		{name: "empty selects none", enabled: []string{}, want: []string{}},
		{name: "keeps priority order not config order", enabled: []string{"c", "a"}, want: []string{"a", "c"}},
		{name: "unknown names are ignored", enabled: []string{"b", "removed-plugin"}, want: []string{"b"}},
		{name: "only unknown names", enabled: []string{"gone"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Filter(RoleCodeGenerator, tt.enabled)
			names := make([]string, 0, len(got))
			for _, p := range got {
				names = append(names, p.Descriptor().Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestRegistry_Descriptors(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(postProcessor("p", 0), generator("g", 0))

	descs := r.Descriptors()
	require.Len(t, descs, 2)
	assert.Equal(t, RoleCodeGenerator, descs[0].Role)
	assert.Equal(t, RolePostProcessor, descs[1].Role)
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() {
		r.MustRegister(generator("x", 0), generator("x", 0))
	})
}

func TestCodeGeneratorData_Accessors(t *testing.T) {
	d := CodeGeneratorData{"custom": 42}
	assert.Equal(t, "", d.Kind())
	assert.Nil(t, d.KeyType())
	assert.Nil(t, d.ValueType())
	assert.Equal(t, 42, d["custom"])
}
