package rpc

import (
	"fmt"
)

const registryLogPrefix = "rpc:registry"

// Registry is the flat dispatch table compiled from a router tree. It is
// read-only once built.
type Registry struct {
	procedures []*Procedure
}

// BuildRegistry assigns ids depth-first: each router's own procedures, in
// declaration order, are numbered before its children are visited.
func BuildRegistry(routers []*Router) (*Registry, error) {
	reg := &Registry{}
	for _, r := range routers {
		if r == nil {
			return nil, fmt.Errorf("%s - nil router", registryLogPrefix)
		}
		if err := reg.addRouter(r); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (reg *Registry) addRouter(r *Router) error {
	for _, p := range r.procedures {
		if err := p.assign(len(reg.procedures)); err != nil {
			return fmt.Errorf("%s - router %s: %w", registryLogPrefix, r.name, err)
		}
		reg.procedures = append(reg.procedures, p)
	}
	for _, child := range r.routers {
		if err := reg.addRouter(child); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the procedure with the given id. Valid ids are [0, Len()).
func (reg *Registry) Lookup(id int) (*Procedure, bool) {
	if id < 0 || id >= len(reg.procedures) {
		return nil, false
	}
	return reg.procedures[id], true
}

// Len returns the number of procedures.
func (reg *Registry) Len() int {
	return len(reg.procedures)
}

// Procedures returns the table in id order.
func (reg *Registry) Procedures() []*Procedure {
	out := make([]*Procedure, len(reg.procedures))
	copy(out, reg.procedures)
	return out
}
