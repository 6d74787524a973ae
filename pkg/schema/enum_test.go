package schema

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const enumTestPrefix = "schema:enum_test"

type Color string

func (Color) EnumMembers() []EnumMember {
	return []EnumMember{{Name: "Red"}, {Name: "Green"}, {Name: "Blue"}}
}

type Priority int

func (Priority) EnumMembers() []EnumMember {
	return []EnumMember{{Name: "Low", Value: 1}, {Name: "High", Value: int64(10)}}
}

type Grade rune

func (*Grade) EnumMembers() []EnumMember {
	return []EnumMember{{Name: "Top", Value: Char('A')}, {Name: "Pass", Value: Char('C')}}
}

type Ratio float64

func (Ratio) EnumMembers() []EnumMember {
	return []EnumMember{{Name: "Half", Value: 0.5}, {Name: "Whole", Value: float32(1)}}
}

type Toggle bool

func (Toggle) EnumMembers() []EnumMember {
	return []EnumMember{{Name: "On", Value: true}, {Name: "Off", Value: false}}
}

type Code string

func (Code) EnumMembers() []EnumMember {
	return []EnumMember{{Name: "Ok", Value: "OK"}, {Name: "Missing", Value: "NOT_FOUND"}}
}

type Mixed int

func (Mixed) EnumMembers() []EnumMember {
	return []EnumMember{{Name: "A", Value: 1}, {Name: "B"}}
}

type Shape string

func (Shape) EnumMembers() []EnumMember {
	return []EnumMember{{Name: "Circle", Value: struct{ Radius float64 }{1}}}
}

type Paint struct {
	Base   Color  `json:"base"`
	Accent *Color `json:"accent"`
	Layers []Color
}

func enumValues(t *testing.T, def *Type) map[string]string {
	t.Helper()
	out := make(map[string]string, len(def.Fields))
	for _, f := range def.Fields {
		require.NotNil(t, f.Value, "%s - member %s has no value", enumTestPrefix, f.Name)
		out[f.Name] = *f.Value
	}
	return out
}

func TestDescribe_Enums(t *testing.T) {
	tests := []struct {
		name   string
		typ    reflect.Type
		rel    *Rel
		values map[string]string
		order  []string
	}{
		{
			name:   "pure",
			typ:    reflect.TypeFor[Color](),
			rel:    Native(TypeString, FormatType),
			values: map[string]string{"Red": "Red", "Green": "Green", "Blue": "Blue"},
			order:  []string{"Red", "Green", "Blue"},
		},
		{
			name:   "integer",
			typ:    reflect.TypeFor[Priority](),
			rel:    Native(TypeInteger, FormatInt64),
			values: map[string]string{"Low": "1", "High": "10"},
			order:  []string{"Low", "High"},
		},
		{
			name:   "char with pointer receiver",
			typ:    reflect.TypeFor[Grade](),
			rel:    Native(TypeChar, FormatType),
			values: map[string]string{"Top": "A", "Pass": "C"},
			order:  []string{"Top", "Pass"},
		},
		{
			name:   "float",
			typ:    reflect.TypeFor[Ratio](),
			rel:    Native(TypeFloat, FormatFloat64),
			values: map[string]string{"Half": "0.5", "Whole": "1"},
			order:  []string{"Half", "Whole"},
		},
		{
			name:   "bool",
			typ:    reflect.TypeFor[Toggle](),
			rel:    Native(TypeBoolean, FormatType),
			values: map[string]string{"On": "true", "Off": "false"},
			order:  []string{"On", "Off"},
		},
		{
			name:   "string",
			typ:    reflect.TypeFor[Code](),
			rel:    Native(TypeString, FormatType),
			values: map[string]string{"Ok": "OK", "Missing": "NOT_FOUND"},
			order:  []string{"Ok", "Missing"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			got, err := reg.Describe(tt.typ)
			require.NoError(t, err, enumTestPrefix)
			assert.Equal(t, EnumRef(tt.typ.Name()), got, enumTestPrefix)

			def, ok := reg.Lookup(tt.typ.Name())
			require.True(t, ok, enumTestPrefix)
			assert.Equal(t, KindEnum, def.Kind, enumTestPrefix)
			assert.Equal(t, tt.values, enumValues(t, def), enumTestPrefix)

			order := make([]string, 0, len(def.Fields))
			for _, f := range def.Fields {
				order = append(order, f.Name)
				assert.Equal(t, tt.rel, f.Rel, enumTestPrefix)
			}
			assert.Equal(t, tt.order, order, enumTestPrefix)
		})
	}
}

func TestDescribe_InvalidEnums(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
	}{
		{"mixed valued and unvalued", reflect.TypeFor[Mixed]()},
		{"member carrying fields", reflect.TypeFor[Shape]()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			_, err := reg.Describe(tt.typ)
			assert.ErrorIs(t, err, ErrInvalidEnum, enumTestPrefix)
			_, ok := reg.Lookup(tt.typ.Name())
			assert.False(t, ok, enumTestPrefix)
		})
	}
}

// Palette is an interface that embeds Enum; it has no members of its own.
type Palette interface {
	Enum
	Primary() Color
}

type Canvas struct {
	Palette Palette `json:"palette"`
}

func TestDescribe_EnumInterfaceIsNotAnEnum(t *testing.T) {
	reg := NewRegistry()

	got, err := reg.Describe(reflect.TypeFor[Palette]())
	require.NoError(t, err, enumTestPrefix)
	assert.Equal(t, Named("Palette", Native(TypeObject, FormatType)), got, enumTestPrefix)
	assert.Empty(t, reg.Types(), enumTestPrefix)

	_, err = reg.Describe(reflect.TypeFor[Canvas]())
	require.NoError(t, err, enumTestPrefix)
	canvas, ok := reg.Lookup("Canvas")
	require.True(t, ok, enumTestPrefix)
	require.Len(t, canvas.Fields, 1, enumTestPrefix)
	assert.Equal(t, Named("Palette", Native(TypeObject, FormatType)), canvas.Fields[0].Rel, enumTestPrefix)
}

func TestDescribe_EnumFieldsReferenceByName(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Describe(reflect.TypeFor[Paint]())
	require.NoError(t, err, enumTestPrefix)

	paint, ok := reg.Lookup("Paint")
	require.True(t, ok, enumTestPrefix)
	assert.Equal(t, EnumRef("Color"), paint.Fields[0].Rel, enumTestPrefix)
	assert.Equal(t, NullableOf(EnumRef("Color")), paint.Fields[1].Rel, enumTestPrefix)
	assert.Equal(t, ArrayOf(EnumRef("Color")), paint.Fields[2].Rel, enumTestPrefix)
	assert.Len(t, reg.Types(), 2, enumTestPrefix)
}
