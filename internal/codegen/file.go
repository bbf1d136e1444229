package codegen

import "github.com/okra-platform/genpipe/internal/typedesc"

// CodeGenFile is a generated artifact. FileName is relative to the output
// directory and is the identity post-processors merge on.
type CodeGenFile struct {
	FileName      string
	FileContent   string
	GeneratorName string
}

// NewFile creates a file attributed to generator
func NewFile(fileName, content, generator string) *CodeGenFile {
	return &CodeGenFile{
		FileName:      fileName,
		FileContent:   content,
		GeneratorName: generator,
	}
}

// Keys used by the built-in record shapes
const (
	DataKeyKind      = "kind"
	DataKeyKeyType   = "keyType"
	DataKeyEnumType  = "enumType"
	DataKeyValueType = "valueType"
)

// Record kinds stored under DataKeyKind
const (
	DataKindKeyedFactory     = "keyed-factory"
	DataKindEnumKeyedFactory = "enum-keyed-factory"
)

// CodeGeneratorData is an open bag of values produced by a data provider.
// Values are usually type descriptors; third-party providers may store anything.
type CodeGeneratorData map[string]any

// NewKeyedFactoryData creates a record for a factory mapping key to value
func NewKeyedFactoryData(key, value *typedesc.TypeDescriptor) CodeGeneratorData {
	return CodeGeneratorData{
		DataKeyKind:      DataKindKeyedFactory,
		DataKeyKeyType:   key,
		DataKeyValueType: value,
	}
}

// NewEnumKeyedFactoryData creates a record for a factory keyed by enum members
func NewEnumKeyedFactoryData(enum, value *typedesc.TypeDescriptor) CodeGeneratorData {
	return CodeGeneratorData{
		DataKeyKind:      DataKindEnumKeyedFactory,
		DataKeyEnumType:  enum,
		DataKeyValueType: value,
	}
}

// Kind returns the record kind, or "" for records without one
func (d CodeGeneratorData) Kind() string {
	k, _ := d[DataKeyKind].(string)
	return k
}

// Descriptor returns the type descriptor stored under key
func (d CodeGeneratorData) Descriptor(key string) (*typedesc.TypeDescriptor, bool) {
	td, ok := d[key].(*typedesc.TypeDescriptor)
	return td, ok && td != nil
}

// KeyType returns the key descriptor of a keyed-factory record
func (d CodeGeneratorData) KeyType() *typedesc.TypeDescriptor {
	td, _ := d.Descriptor(DataKeyKeyType)
	return td
}

// EnumType returns the enum descriptor of an enum-keyed-factory record
func (d CodeGeneratorData) EnumType() *typedesc.TypeDescriptor {
	td, _ := d.Descriptor(DataKeyEnumType)
	return td
}

// ValueType returns the value descriptor of a factory record
func (d CodeGeneratorData) ValueType() *typedesc.TypeDescriptor {
	td, _ := d.Descriptor(DataKeyValueType)
	return td
}
