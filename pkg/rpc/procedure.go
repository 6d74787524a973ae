package rpc

import (
	"fmt"

	"github.com/morezero/typed-rpc/pkg/schema"
)

const procedureLogPrefix = "rpc:procedure"

const unassignedID = -1

// Procedure is a named, typed, remotely callable handler. The same
// *Procedure is held by its router and by the registry's flat table.
type Procedure struct {
	id      int
	name    string
	kind    schema.ProcedureType
	handler *handler
}

func newProcedure(name string, kind schema.ProcedureType, fn any) (*Procedure, error) {
	if name == "" {
		return nil, fmt.Errorf("%s - procedure name is empty", procedureLogPrefix)
	}
	h, err := bindHandler(fn)
	if err != nil {
		return nil, err
	}
	return &Procedure{id: unassignedID, name: name, kind: kind, handler: h}, nil
}

// ID returns the procedure id, or -1 before the registry is built.
func (p *Procedure) ID() int {
	return p.id
}

// Name returns the procedure name.
func (p *Procedure) Name() string {
	return p.name
}

// Kind returns query or mutation.
func (p *Procedure) Kind() schema.ProcedureType {
	return p.kind
}

func (p *Procedure) assign(id int) error {
	if p.id != unassignedID && p.id != id {
		return fmt.Errorf("%s - procedure %s already has id %d, cannot assign %d", procedureLogPrefix, p.name, p.id, id)
	}
	p.id = id
	return nil
}

func (p *Procedure) execute(c *CallContext) Response {
	return p.handler.invoke(c)
}

func (p *Procedure) describe(path string, reg *schema.Registry) (schema.Procedure, error) {
	params, result, err := p.handler.describe(reg)
	if err != nil {
		return schema.Procedure{}, fmt.Errorf("%s - %s/%s: %w", procedureLogPrefix, path, p.name, err)
	}
	return schema.Procedure{
		ID:     p.id,
		Type:   p.kind,
		Path:   path,
		Name:   p.name,
		Params: params,
		Result: result,
	}, nil
}
