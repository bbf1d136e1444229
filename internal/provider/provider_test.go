package provider

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/okra-platform/genpipe/internal/runcache"
	"github.com/okra-platform/genpipe/internal/typedesc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(ds ...*typedesc.TypeDescriptor) *runcache.Cache {
	c := runcache.New()
	c.Set(typedesc.CacheKey, ds)
	return c
}

var (
	gameObject = typedesc.Plain("Game", "GameObject", "game")
	weapon     = typedesc.Plain("Game", "Weapon", "game")
	weaponKind = typedesc.Enum("Game", "WeaponKind", "game", "Sword", "Bow")
)

func TestValidateDescriptors_Valid(t *testing.T) {
	v := NewValidateDescriptors()
	v.SetCache(seeded(
		gameObject,
		weapon.WithMarker(typedesc.KeyedFactory(gameObject)),
		weaponKind.WithMarker(typedesc.EnumKeyedFactory(weapon)),
	))

	assert.NoError(t, v.PreProcess(context.Background()))
}

func TestValidateDescriptors_EmptyListIsValid(t *testing.T) {
	// Test: a present but empty descriptor list passes
	v := NewValidateDescriptors()
	v.SetCache(seeded())
	assert.NoError(t, v.PreProcess(context.Background()))
}

func TestValidateDescriptors_Errors(t *testing.T) {
	tests := []struct {
		name string
		d    *typedesc.TypeDescriptor
		want string
	}{
		{
			name: "keyed factory without value",
			d:    weapon.WithMarker(typedesc.Marker{Kind: typedesc.MarkerKeyedFactory}),
			want: "Game.Weapon: keyed factory marker has no value type",
		},
		{
			name: "enum factory on plain type",
			d:    weapon.WithMarker(typedesc.EnumKeyedFactory(gameObject)),
			want: "not an enum",
		},
		{
			name: "enum factory on empty enum",
			d:    typedesc.Enum("Game", "Empty", "game").WithMarker(typedesc.EnumKeyedFactory(gameObject)),
			want: "without members",
		},
		{
			name: "enum factory without value",
			d:    weaponKind.WithMarker(typedesc.Marker{Kind: typedesc.MarkerEnumKeyedFactory}),
			want: "enum factory marker has no value type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidateDescriptors()
			v.SetCache(seeded(gameObject, tt.d))

			err := v.PreProcess(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateDescriptors_MissingCacheEntry(t *testing.T) {
	// Test: missing or mistyped descriptor list is reported
	v := NewValidateDescriptors()
	err := v.PreProcess(context.Background())
	assert.True(t, errors.Is(err, ErrNoDescriptors))

	c := runcache.New()
	c.Set(typedesc.CacheKey, "not a list")
	v.SetCache(c)
	err = v.PreProcess(context.Background())
	assert.True(t, errors.Is(err, ErrNoDescriptors))
	assert.Contains(t, errors.FlattenHints(err), typedesc.CacheKey)
}

func TestKeyedFactoryData(t *testing.T) {
	sword := typedesc.Plain("Game", "Sword", "game")
	p := NewKeyedFactoryData()
	p.SetCache(seeded(
		gameObject,
		weapon.WithMarker(typedesc.KeyedFactory(gameObject)),
		weaponKind.WithMarker(typedesc.EnumKeyedFactory(weapon)),
		sword.WithMarker(typedesc.KeyedFactory(weapon)),
	))

	records, err := p.GetData(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Test: records follow descriptor order
	assert.Equal(t, codegen.DataKindKeyedFactory, records[0].Kind())
	assert.Equal(t, "Weapon", records[0].KeyType().Name)
	assert.Same(t, gameObject, records[0].ValueType())
	assert.Equal(t, "Sword", records[1].KeyType().Name)
	assert.Same(t, weapon, records[1].ValueType())
}

func TestEnumKeyedFactoryData(t *testing.T) {
	p := NewEnumKeyedFactoryData()
	p.SetCache(seeded(
		weapon.WithMarker(typedesc.KeyedFactory(gameObject)),
		weaponKind.WithMarker(typedesc.EnumKeyedFactory(weapon)),
	))

	records, err := p.GetData(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, codegen.DataKindEnumKeyedFactory, records[0].Kind())
	assert.Equal(t, []string{"Sword", "Bow"}, records[0].EnumType().Members)
	assert.Same(t, weapon, records[0].ValueType())
}

func TestProviders_NoMarkers(t *testing.T) {
	// Test: no markers yields no records and no error
	for _, p := range []interface {
		codegen.DataProvider
		codegen.CacheAware
	}{NewKeyedFactoryData(), NewEnumKeyedFactoryData()} {
		p.SetCache(seeded(gameObject, weapon))
		records, err := p.GetData(context.Background())
		require.NoError(t, err)
		assert.Empty(t, records)
	}
}

func TestDescriptors(t *testing.T) {
	reg := codegen.NewRegistry()
	require.NoError(t, reg.Register(NewValidateDescriptors()))
	require.NoError(t, reg.Register(NewEnumKeyedFactoryData()))
	require.NoError(t, reg.Register(NewKeyedFactoryData()))

	assert.Equal(t, []string{NameKeyedFactoryData, NameEnumKeyedFactoryData}, reg.Names(codegen.RoleDataProvider))
	assert.Equal(t, []string{NameValidateDescriptors}, reg.Names(codegen.RolePreProcessor))
}
