// Package schema describes procedures and the types they reference as a
// serializable document used for client code generation.
package schema

// Variant tags a type descriptor.
type Variant string

const (
	VariantNative   Variant = "native"
	VariantArray    Variant = "array"
	VariantNullable Variant = "nullable"
	VariantType     Variant = "type"
	VariantStruct   Variant = "struct"
	VariantEnum     Variant = "enum"
	VariantMap      Variant = "map"
)

// FieldType is the native kind of a value.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeChar    FieldType = "char"
	TypeInteger FieldType = "integer"
	TypeFloat   FieldType = "float"
	TypeBoolean FieldType = "boolean"
	TypeMap     FieldType = "map"
	TypeStruct  FieldType = "struct"
	TypeEnum    FieldType = "enum"
	TypeObject  FieldType = "object"
)

// Format refines a FieldType with a width or encoding. FormatType means
// "same as the field type".
type Format string

const (
	FormatType     Format = "type"
	FormatIsize    Format = "isize"
	FormatInt64    Format = "int64"
	FormatInt32    Format = "int32"
	FormatInt16    Format = "int16"
	FormatInt8     Format = "int8"
	FormatUsize    Format = "usize"
	FormatUInt64   Format = "uint64"
	FormatUInt32   Format = "uint32"
	FormatUInt16   Format = "uint16"
	FormatUInt8    Format = "uint8"
	FormatFloat64  Format = "float64"
	FormatFloat32  Format = "float32"
	FormatDate     Format = "date"
	FormatDateTime Format = "datetime"
)

// Rel is a recursive type descriptor. Which fields are populated depends on
// Variant:
//
//	native   Type, Format
//	array    Value
//	nullable Value
//	map      Key, Value
//	struct   Name
//	enum     Name
//	type     Name, Ty
type Rel struct {
	Variant Variant   `json:"variant"`
	Type    FieldType `json:"type,omitempty"`
	Format  Format    `json:"format,omitempty"`
	Name    string    `json:"name,omitempty"`
	Ty      *Rel      `json:"ty,omitempty"`
	Key     *Rel      `json:"key,omitempty"`
	Value   *Rel      `json:"value,omitempty"`
}

// Native returns a native descriptor.
func Native(t FieldType, f Format) *Rel {
	return &Rel{Variant: VariantNative, Type: t, Format: f}
}

// ArrayOf returns an array descriptor.
func ArrayOf(elem *Rel) *Rel {
	return &Rel{Variant: VariantArray, Value: elem}
}

// NullableOf returns a nullable descriptor.
func NullableOf(elem *Rel) *Rel {
	return &Rel{Variant: VariantNullable, Value: elem}
}

// MapOf returns a map descriptor.
func MapOf(key, value *Rel) *Rel {
	return &Rel{Variant: VariantMap, Key: key, Value: value}
}

// StructRef references a struct registered in the type graph.
func StructRef(name string) *Rel {
	return &Rel{Variant: VariantStruct, Name: name}
}

// EnumRef references an enum registered in the type graph.
func EnumRef(name string) *Rel {
	return &Rel{Variant: VariantEnum, Name: name}
}

// Named wraps a descriptor under a custom type name.
func Named(name string, ty *Rel) *Rel {
	return &Rel{Variant: VariantType, Name: name, Ty: ty}
}
