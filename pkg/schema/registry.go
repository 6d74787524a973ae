package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"
)

const logPrefix = "schema:registry"

// ErrUnsupportedType is returned for Go types with no JSON representation.
var ErrUnsupportedType = errors.New("unsupported type")

var (
	timeType       = reflect.TypeOf(time.Time{})
	durationType   = reflect.TypeOf(time.Duration(0))
	rawMessageType = reflect.TypeOf(json.RawMessage(nil))
)

// Registry is the type graph built during one schema pass. Types are keyed by
// their Go type name; the first registration of a name wins.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	types  map[string]*Type
	owners map[string]reflect.Type
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		types:  make(map[string]*Type),
		owners: make(map[string]reflect.Type),
	}
}

// Types returns the registered types keyed by name.
func (r *Registry) Types() map[string]*Type {
	return r.types
}

// Lookup returns the registered type with the given name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Describe returns the descriptor for t, registering every struct and enum
// it reaches.
func (r *Registry) Describe(t reflect.Type) (*Rel, error) {
	if isEnum(t) {
		if err := r.register(t, KindEnum, func() ([]Field, error) { return enumFields(t) }); err != nil {
			return nil, err
		}
		return EnumRef(t.Name()), nil
	}

	switch t {
	case timeType:
		return Native(TypeString, FormatDateTime), nil
	case durationType:
		return Native(TypeInteger, FormatUInt64), nil
	case rawMessageType:
		return Native(TypeObject, FormatType), nil
	}

	if t.Kind() == reflect.Struct {
		if t.Name() == "" {
			return Native(TypeObject, FormatType), nil
		}
		if err := r.register(t, KindStruct, func() ([]Field, error) { return r.structFields(t) }); err != nil {
			return nil, err
		}
		return StructRef(t.Name()), nil
	}

	rel, err := r.describeShape(t)
	if err != nil {
		return nil, err
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return Named(t.Name(), rel), nil
	}
	return rel, nil
}

// register adds a complex type under its name. The entry is inserted before
// expand runs so that a type reaching itself sees the name as known.
func (r *Registry) register(t reflect.Type, kind Kind, expand func() ([]Field, error)) error {
	name := t.Name()
	if owner, ok := r.owners[name]; ok {
		if owner != t {
			slog.Warn(fmt.Sprintf("%s - type name %s already registered by %s, skipping %s", logPrefix, name, owner.String(), t.String()))
		}
		return nil
	}

	def := &Type{Name: name, Kind: kind, Fields: []Field{}}
	r.types[name] = def
	r.owners[name] = t

	fields, err := expand()
	if err != nil {
		delete(r.types, name)
		delete(r.owners, name)
		return err
	}
	def.Fields = fields
	return nil
}

func (r *Registry) describeShape(t reflect.Type) (*Rel, error) {
	switch t.Kind() {
	case reflect.Bool:
		return Native(TypeBoolean, FormatType), nil
	case reflect.String:
		return Native(TypeString, FormatType), nil
	case reflect.Int:
		return Native(TypeInteger, FormatIsize), nil
	case reflect.Int8:
		return Native(TypeInteger, FormatInt8), nil
	case reflect.Int16:
		return Native(TypeInteger, FormatInt16), nil
	case reflect.Int32:
		return Native(TypeInteger, FormatInt32), nil
	case reflect.Int64:
		return Native(TypeInteger, FormatInt64), nil
	case reflect.Uint, reflect.Uintptr:
		return Native(TypeInteger, FormatUsize), nil
	case reflect.Uint8:
		return Native(TypeInteger, FormatUInt8), nil
	case reflect.Uint16:
		return Native(TypeInteger, FormatUInt16), nil
	case reflect.Uint32:
		return Native(TypeInteger, FormatUInt32), nil
	case reflect.Uint64:
		return Native(TypeInteger, FormatUInt64), nil
	case reflect.Float32:
		return Native(TypeFloat, FormatFloat32), nil
	case reflect.Float64:
		return Native(TypeFloat, FormatFloat64), nil
	case reflect.Interface:
		return Native(TypeObject, FormatType), nil
	case reflect.Pointer:
		elem, err := r.Describe(t.Elem())
		if err != nil {
			return nil, err
		}
		return NullableOf(elem), nil
	case reflect.Slice:
		// encoding/json writes byte slices as base64 strings.
		if t.Elem().Kind() == reflect.Uint8 {
			return Native(TypeString, FormatType), nil
		}
		elem, err := r.Describe(t.Elem())
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	case reflect.Array:
		elem, err := r.Describe(t.Elem())
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	case reflect.Map:
		key, err := r.Describe(t.Key())
		if err != nil {
			return nil, err
		}
		value, err := r.Describe(t.Elem())
		if err != nil {
			return nil, err
		}
		return MapOf(key, value), nil
	default:
		return nil, fmt.Errorf("%s - %s: %w", logPrefix, t.String(), ErrUnsupportedType)
	}
}

// jsonField is a candidate field found while flattening a struct.
type jsonField struct {
	name   string
	tagged bool
	depth  int
	owner  reflect.Type
	field  reflect.StructField
}

// structFields lists the JSON-visible fields of t in declaration order.
// Untagged embedded structs are flattened with encoding/json's rules: a
// shallower field hides a deeper one, and equal-depth conflicts are dropped
// unless exactly one of them is tagged.
func (r *Registry) structFields(t reflect.Type) ([]Field, error) {
	var candidates []jsonField
	collectFields(t, 0, map[reflect.Type]bool{}, &candidates)

	fields := make([]Field, 0, len(candidates))
	for _, c := range dominantFields(candidates) {
		rel, err := r.Describe(c.field.Type)
		if err != nil {
			return nil, fmt.Errorf("%s - field %s.%s: %w", logPrefix, c.owner.Name(), c.field.Name, err)
		}
		fields = append(fields, Field{Name: c.name, Rel: rel})
	}
	return fields, nil
}

// collectFields walks t depth first. Types already on the current embedding
// path are not entered again.
func collectFields(t reflect.Type, depth int, path map[reflect.Type]bool, out *[]jsonField) {
	path[t] = true
	defer delete(path, t)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")

		if sf.Anonymous {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if !sf.IsExported() && (ft.Kind() != reflect.Struct || sf.Type.Kind() == reflect.Pointer) {
				continue
			}
			if name == "" && ft.Kind() == reflect.Struct && !isEnum(ft) {
				if !path[ft] {
					collectFields(ft, depth+1, path, out)
				}
				continue
			}
		} else if !sf.IsExported() {
			continue
		}

		tagged := name != ""
		if !tagged {
			name = sf.Name
		}
		*out = append(*out, jsonField{name: name, tagged: tagged, depth: depth, owner: t, field: sf})
	}
}

// dominantFields keeps, per JSON name, the field encoding/json would write.
// Order follows the first appearance of each kept field.
func dominantFields(candidates []jsonField) []jsonField {
	byName := make(map[string][]int)
	for i, c := range candidates {
		byName[c.name] = append(byName[c.name], i)
	}

	keep := make([]bool, len(candidates))
	for _, idx := range byName {
		minDepth := candidates[idx[0]].depth
		for _, i := range idx[1:] {
			if candidates[i].depth < minDepth {
				minDepth = candidates[i].depth
			}
		}

		winner, shallow, taggedCount := -1, 0, 0
		for _, i := range idx {
			if candidates[i].depth != minDepth {
				continue
			}
			shallow++
			if candidates[i].tagged {
				taggedCount++
				winner = i
			}
		}
		switch {
		case shallow == 1:
			for _, i := range idx {
				if candidates[i].depth == minDepth {
					keep[i] = true
				}
			}
		case taggedCount == 1:
			keep[winner] = true
		}
	}

	out := make([]jsonField, 0, len(candidates))
	for i, c := range candidates {
		if keep[i] {
			out = append(out, c)
		}
	}
	return out
}
