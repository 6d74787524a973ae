// Package inject provides a type-keyed service locator shared by concurrently
// executing procedures.
package inject

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

const logPrefix = "inject:inject"

// Provider looks up a shared instance by its type.
type Provider interface {
	Obtain(t reflect.Type) (any, bool)
}

// Container is a Provider backed by a map from type to value. Lookups may run
// concurrently with each other and with Set.
type Container struct {
	mu     sync.RWMutex
	values map[reflect.Type]any
}

// New creates an empty Container.
func New() *Container {
	return &Container{values: make(map[reflect.Type]any)}
}

// Obtain returns the value registered for t.
func (c *Container) Obtain(t reflect.Type) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[t]
	return v, ok
}

// Len returns the number of registered values.
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// Set registers v under the type T, replacing any previous value. T may be an
// interface type, in which case lookups must ask for that interface.
func Set[T any](c *Container, v T) {
	t := reflect.TypeFor[T]()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[t]; ok {
		slog.Debug(fmt.Sprintf("%s - replacing provided %s", logPrefix, t.String()))
	}
	c.values[t] = v
}

// Get obtains a T from p.
func Get[T any](p Provider) (T, bool) {
	var zero T
	if p == nil {
		return zero, false
	}
	v, ok := p.Obtain(reflect.TypeFor[T]())
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
