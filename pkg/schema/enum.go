package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

const enumLogPrefix = "schema:enum"

// ErrInvalidEnum is returned when an enum cannot be encoded: it mixes valued
// and unvalued members, or a member carries something other than a literal.
var ErrInvalidEnum = errors.New("invalid enum")

// Char marks an enum member value as a single character rather than an
// integer.
type Char rune

// EnumMember is one member of an enum. A nil Value declares a pure member.
type EnumMember struct {
	Name  string
	Value any
}

// Enum is implemented by types that encode as a closed set of members.
//
// Either every member has a nil Value (a pure enum, encoded as strings equal
// to the member names) or every member carries a literal string, Char,
// integer, float or bool.
type Enum interface {
	EnumMembers() []EnumMember
}

var enumType = reflect.TypeOf((*Enum)(nil)).Elem()

func isEnum(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface || t.Name() == "" {
		return false
	}
	return t.Implements(enumType) || reflect.PointerTo(t).Implements(enumType)
}

func enumOf(t reflect.Type) Enum {
	if t.Implements(enumType) {
		return reflect.Zero(t).Interface().(Enum)
	}
	return reflect.New(t).Interface().(Enum)
}

func enumFields(t reflect.Type) ([]Field, error) {
	members := enumOf(t).EnumMembers()

	valued := 0
	for _, m := range members {
		if m.Value != nil {
			valued++
		}
	}
	if valued != 0 && valued != len(members) {
		return nil, fmt.Errorf("%s - enum %s mixes valued and unvalued members: %w", enumLogPrefix, t.Name(), ErrInvalidEnum)
	}

	fields := make([]Field, 0, len(members))
	for _, m := range members {
		if valued == 0 {
			value := m.Name
			fields = append(fields, Field{Name: m.Name, Rel: Native(TypeString, FormatType), Value: &value})
			continue
		}
		ft, format, value, err := literal(m.Value)
		if err != nil {
			return nil, fmt.Errorf("%s - enum %s member %s: %w", enumLogPrefix, t.Name(), m.Name, err)
		}
		fields = append(fields, Field{Name: m.Name, Rel: Native(ft, format), Value: &value})
	}
	return fields, nil
}

func literal(v any) (FieldType, Format, string, error) {
	if c, ok := v.(Char); ok {
		return TypeChar, FormatType, string(rune(c)), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return TypeString, FormatType, rv.String(), nil
	case reflect.Bool:
		return TypeBoolean, FormatType, strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return TypeInteger, FormatInt64, strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger, FormatInt64, strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return TypeFloat, FormatFloat64, strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	default:
		return "", "", "", fmt.Errorf("member value of type %T is not a literal: %w", v, ErrInvalidEnum)
	}
}
