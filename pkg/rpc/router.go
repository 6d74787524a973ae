package rpc

import (
	"errors"
	"fmt"

	"github.com/morezero/typed-rpc/pkg/schema"
)

const routerLogPrefix = "rpc:router"

// Router is a namespace of procedures and child routers. Handler errors found
// while building are collected and reported by NewApp.
type Router struct {
	name       string
	routers    []*Router
	procedures []*Procedure
	errs       []error
}

// NewRouter creates an empty router.
func NewRouter(name string) *Router {
	return &Router{name: name}
}

// Name returns the router name.
func (r *Router) Name() string {
	return r.name
}

// Route adds a child router named name, letting build populate it.
func (r *Router) Route(name string, build func(*Router)) *Router {
	child := NewRouter(name)
	if build != nil {
		build(child)
	}
	r.routers = append(r.routers, child)
	return r
}

// Mount appends existing routers as children.
func (r *Router) Mount(children ...*Router) *Router {
	for _, child := range children {
		if child == nil {
			r.errs = append(r.errs, fmt.Errorf("%s - %s: nil child router", routerLogPrefix, r.name))
			continue
		}
		r.routers = append(r.routers, child)
	}
	return r
}

// Query adds a query procedure.
func (r *Router) Query(name string, fn any) *Router {
	return r.add(name, schema.Query, fn)
}

// Mutation adds a mutation procedure.
func (r *Router) Mutation(name string, fn any) *Router {
	return r.add(name, schema.Mutation, fn)
}

func (r *Router) add(name string, kind schema.ProcedureType, fn any) *Router {
	p, err := newProcedure(name, kind, fn)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s - %s.%s: %w", routerLogPrefix, r.name, name, err))
		return r
	}
	r.procedures = append(r.procedures, p)
	return r
}

// Procedures returns the router's own procedures in declaration order.
func (r *Router) Procedures() []*Procedure {
	out := make([]*Procedure, len(r.procedures))
	copy(out, r.procedures)
	return out
}

// Routers returns the child routers in declaration order.
func (r *Router) Routers() []*Router {
	out := make([]*Router, len(r.routers))
	copy(out, r.routers)
	return out
}

// Err returns every error collected by r and its descendants.
func (r *Router) Err() error {
	errs := append([]error(nil), r.errs...)
	for _, child := range r.routers {
		if err := child.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
