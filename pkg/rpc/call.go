package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/morezero/typed-rpc/pkg/inject"
)

const callLogPrefix = "rpc:call"

// Call is one request unit within a batch. Key correlates the call with its
// response; its uniqueness is up to the caller.
type Call struct {
	Key  string          `json:"key"`
	Proc int             `json:"proc"`
	Args json.RawMessage `json:"args,omitempty"`
}

// UnmarshalJSON requires the proc field to be present.
func (c *Call) UnmarshalJSON(data []byte) error {
	var aux struct {
		Key  string          `json:"key"`
		Proc *int            `json:"proc"`
		Args json.RawMessage `json:"args"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Proc == nil {
		return fmt.Errorf("%s - call %q has no proc", callLogPrefix, aux.Key)
	}
	c.Key = aux.Key
	c.Proc = *aux.Proc
	c.Args = aux.Args
	return nil
}

// DecodeBatch parses a JSON array of calls.
func DecodeBatch(data []byte) ([]Call, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%s - batch must be a JSON array", callLogPrefix)
	}
	var calls []Call
	if err := json.Unmarshal(trimmed, &calls); err != nil {
		return nil, fmt.Errorf("%s - failed to decode batch: %w", callLogPrefix, err)
	}
	return calls, nil
}

// CallContext is everything an extractor may draw a parameter from.
type CallContext struct {
	Context  context.Context
	Key      string
	Args     json.RawMessage
	App      AppInfo
	Provider inject.Provider
}

// HasArgs reports whether the call carried arguments. A JSON null counts as
// absent.
func (c *CallContext) HasArgs() bool {
	trimmed := bytes.TrimSpace(c.Args)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
