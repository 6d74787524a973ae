package rpc

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/morezero/typed-rpc/pkg/schema"
)

var (
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
	extractorType = reflect.TypeOf((*Extractor)(nil)).Elem()
	describerType = reflect.TypeOf((*ParamsDescriber)(nil)).Elem()
)

// ErrInvalidHandler is wrapped by every handler signature error.
var ErrInvalidHandler = errors.New("invalid handler")

// handler is a function bound by reflection. Accepted shapes:
//
//	func([ctx context.Context,] p1 P1, ..., pn Pn) [R | error | (R, error)]
//
// where every Pi is extractable.
type handler struct {
	fn           reflect.Value
	withContext  bool
	params       []reflect.Type
	result       reflect.Type
	returnsError bool
}

func bindHandler(fn any) (*handler, error) {
	if fn == nil {
		return nil, fmt.Errorf("nil handler: %w", ErrInvalidHandler)
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function: %w", t.String(), ErrInvalidHandler)
	}
	if v.IsNil() {
		return nil, fmt.Errorf("nil handler: %w", ErrInvalidHandler)
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("variadic %s: %w", t.String(), ErrInvalidHandler)
	}

	h := &handler{fn: v}
	start := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		h.withContext = true
		start = 1
	}
	for i := start; i < t.NumIn(); i++ {
		p := t.In(i)
		if p == contextType {
			return nil, fmt.Errorf("context.Context must be the first parameter: %w", ErrInvalidHandler)
		}
		if !reflect.PointerTo(p).Implements(extractorType) {
			return nil, fmt.Errorf("parameter %d (%s) is not extractable: %w", i, p.String(), ErrInvalidHandler)
		}
		h.params = append(h.params, p)
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) == errorType {
			h.returnsError = true
		} else {
			h.result = t.Out(0)
		}
	case 2:
		if t.Out(0) == errorType || t.Out(1) != errorType {
			return nil, fmt.Errorf("two results must be (R, error), got (%s, %s): %w", t.Out(0), t.Out(1), ErrInvalidHandler)
		}
		h.result = t.Out(0)
		h.returnsError = true
	default:
		return nil, fmt.Errorf("%d results: %w", t.NumOut(), ErrInvalidHandler)
	}
	return h, nil
}

// invoke extracts parameters left to right, stopping at the first failure,
// then calls the function and converts what it returned.
func (h *handler) invoke(c *CallContext) Response {
	in := make([]reflect.Value, 0, len(h.params)+1)
	if h.withContext {
		ctx := c.Context
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(ctx))
	}
	for _, p := range h.params {
		ptr := reflect.New(p)
		if err := ptr.Interface().(Extractor).FromCall(c); err != nil {
			return Failure(c.Key, extractionError(err))
		}
		in = append(in, ptr.Elem())
	}

	return h.respond(c.Key, h.fn.Call(in))
}

func (h *handler) respond(key string, out []reflect.Value) Response {
	if h.returnsError {
		if errV := out[len(out)-1]; !errV.IsNil() {
			return Failure(key, errV.Interface().(error))
		}
	}
	if h.result == nil {
		return Empty(key)
	}

	rv := out[0]
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Empty(key)
		}
	case reflect.Slice:
		if rv.IsNil() {
			rv = reflect.MakeSlice(rv.Type(), 0, 0)
		}
	case reflect.Map:
		if rv.IsNil() {
			rv = reflect.MakeMap(rv.Type())
		}
	}
	return Result(key, rv.Interface())
}

// describe derives params and result descriptors from the static signature.
// When several parameters describe params the last one wins.
func (h *handler) describe(reg *schema.Registry) (params, result *schema.Rel, err error) {
	for _, p := range h.params {
		d, ok := describerFor(p)
		if !ok {
			continue
		}
		rel, err := d.DescribeParams(reg)
		if err != nil {
			return nil, nil, err
		}
		if rel != nil {
			params = rel
		}
	}
	if h.result != nil {
		result, err = reg.Describe(h.result)
		if err != nil {
			return nil, nil, err
		}
	}
	return params, result, nil
}

func describerFor(p reflect.Type) (ParamsDescriber, bool) {
	if p.Implements(describerType) {
		return reflect.Zero(p).Interface().(ParamsDescriber), true
	}
	if reflect.PointerTo(p).Implements(describerType) {
		return reflect.New(p).Interface().(ParamsDescriber), true
	}
	return nil, false
}
