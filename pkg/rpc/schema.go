package rpc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/morezero/typed-rpc/pkg/schema"
)

const schemaLogPrefix = "rpc:schema"

// Schema describes every procedure and the types they reference. Passes are
// serialized; the result depends only on the router tree and app info.
//
// A router's children are listed before its own procedures. Ids are those
// assigned by the registry.
func (a *App) Schema() (*schema.Document, error) {
	a.schemaMu.Lock()
	defer a.schemaMu.Unlock()

	reg := schema.NewRegistry()
	procs := make([]schema.Procedure, 0, a.registry.Len())
	for _, r := range a.routers {
		var err error
		procs, err = visitRouter(procs, reg, r, []string{r.name})
		if err != nil {
			return nil, fmt.Errorf("%s - %w", schemaLogPrefix, err)
		}
	}

	return &schema.Document{
		RPCAPI:     schema.Version,
		Info:       a.info.schemaInfo(),
		Procedures: procs,
		Types:      reg.Types(),
	}, nil
}

// SchemaJSON returns the encoded schema document.
func (a *App) SchemaJSON() ([]byte, error) {
	doc, err := a.Schema()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func visitRouter(procs []schema.Procedure, reg *schema.Registry, r *Router, path []string) ([]schema.Procedure, error) {
	for _, child := range r.routers {
		childPath := append(path[:len(path):len(path)], child.name)
		var err error
		procs, err = visitRouter(procs, reg, child, childPath)
		if err != nil {
			return nil, err
		}
	}

	joined := strings.Join(path, schema.PathSeparator)
	for _, p := range r.procedures {
		d, err := p.describe(joined, reg)
		if err != nil {
			return nil, err
		}
		procs = append(procs, d)
	}
	return procs, nil
}
