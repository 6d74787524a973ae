package rpc

import (
	"encoding/json"
	"reflect"

	"github.com/morezero/typed-rpc/pkg/schema"
)

// Extractor produces one handler parameter from a call. A handler parameter
// of type P is accepted when *P implements Extractor.
type Extractor interface {
	FromCall(c *CallContext) error
}

// ParamsDescriber is implemented by extractors that determine the shape of a
// procedure's params in the schema.
type ParamsDescriber interface {
	DescribeParams(reg *schema.Registry) (*schema.Rel, error)
}

// AppInfo is the static application metadata. As a handler parameter it is
// always available.
type AppInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// FromCall implements Extractor.
func (a *AppInfo) FromCall(c *CallContext) error {
	*a = c.App
	return nil
}

func (a AppInfo) schemaInfo() schema.Info {
	return schema.Info{Name: a.Name, Version: a.Version, Description: a.Description}
}

// Args decodes required call arguments into T.
type Args[T any] struct {
	Value T
}

// FromCall implements Extractor.
func (a *Args[T]) FromCall(c *CallContext) error {
	if !c.HasArgs() {
		return EmptyArgs()
	}
	if err := json.Unmarshal(c.Args, &a.Value); err != nil {
		return UnparsableArgs(err.Error())
	}
	return nil
}

// DescribeParams implements ParamsDescriber.
func (Args[T]) DescribeParams(reg *schema.Registry) (*schema.Rel, error) {
	return reg.Describe(reflect.TypeFor[T]())
}

// OptionalArgs decodes call arguments into T when present. Valid is false
// when the call carried none.
type OptionalArgs[T any] struct {
	Value T
	Valid bool
}

// FromCall implements Extractor.
func (a *OptionalArgs[T]) FromCall(c *CallContext) error {
	if !c.HasArgs() {
		return nil
	}
	if err := json.Unmarshal(c.Args, &a.Value); err != nil {
		return UnparsableArgs(err.Error())
	}
	a.Valid = true
	return nil
}

// DescribeParams implements ParamsDescriber.
func (OptionalArgs[T]) DescribeParams(reg *schema.Registry) (*schema.Rel, error) {
	rel, err := reg.Describe(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return schema.NullableOf(rel), nil
}

// Provide obtains a shared T from the app's dependency provider.
type Provide[T any] struct {
	Value T
}

// FromCall implements Extractor.
func (p *Provide[T]) FromCall(c *CallContext) error {
	t := reflect.TypeFor[T]()
	if c.Provider == nil {
		return DependencyNotFound(t)
	}
	v, ok := c.Provider.Obtain(t)
	if !ok {
		return DependencyNotFound(t)
	}
	typed, ok := v.(T)
	if !ok {
		return DependencyNotFound(t)
	}
	p.Value = typed
	return nil
}
