package provider

import (
	"context"

	"github.com/okra-platform/genpipe/internal/codegen"
	"github.com/okra-platform/genpipe/internal/typedesc"
)

const (
	NameKeyedFactoryData     = "KeyedFactoryData"
	NameEnumKeyedFactoryData = "EnumKeyedFactoryData"
)

// KeyedFactoryData emits a keyed-factory record for each descriptor carrying
// a keyed factory marker, in descriptor order
type KeyedFactoryData struct {
	cacheReader
}

// NewKeyedFactoryData creates the keyed factory data provider
func NewKeyedFactoryData() *KeyedFactoryData {
	return &KeyedFactoryData{}
}

func (p *KeyedFactoryData) Descriptor() codegen.Descriptor {
	return codegen.Descriptor{
		Name:         NameKeyedFactoryData,
		Role:         codegen.RoleDataProvider,
		Priority:     0,
		RunInDryMode: true,
	}
}

func (p *KeyedFactoryData) GetData(ctx context.Context) ([]codegen.CodeGeneratorData, error) {
	ds, err := p.descriptors()
	if err != nil {
		return nil, err
	}

	var records []codegen.CodeGeneratorData
	for _, d := range ds {
		if d == nil || d.Marker.Kind != typedesc.MarkerKeyedFactory {
			continue
		}
		records = append(records, codegen.NewKeyedFactoryData(d, d.Marker.Value))
	}
	return records, nil
}

// EnumKeyedFactoryData emits an enum-keyed record for each enum carrying an
// enum factory marker, in descriptor order
type EnumKeyedFactoryData struct {
	cacheReader
}

// NewEnumKeyedFactoryData creates the enum-keyed factory data provider
func NewEnumKeyedFactoryData() *EnumKeyedFactoryData {
	return &EnumKeyedFactoryData{}
}

func (p *EnumKeyedFactoryData) Descriptor() codegen.Descriptor {
	return codegen.Descriptor{
		Name:         NameEnumKeyedFactoryData,
		Role:         codegen.RoleDataProvider,
		Priority:     10,
		RunInDryMode: true,
	}
}

func (p *EnumKeyedFactoryData) GetData(ctx context.Context) ([]codegen.CodeGeneratorData, error) {
	ds, err := p.descriptors()
	if err != nil {
		return nil, err
	}

	var records []codegen.CodeGeneratorData
	for _, d := range ds {
		if d == nil || d.Marker.Kind != typedesc.MarkerEnumKeyedFactory {
			continue
		}
		records = append(records, codegen.NewEnumKeyedFactoryData(d, d.Marker.Value))
	}
	return records, nil
}
