package rpc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/conc/panics"
)

const dispatchLogPrefix = "rpc:dispatch"

// outcome is what a unit hands back. completed is false when the unit
// panicked or its goroutine exited before the handler returned.
type outcome struct {
	resp      Response
	completed bool
	recovered *panics.Recovered
}

// Process executes a batch. Every resolved call runs in its own goroutine;
// responses are collected in request order, so responses[i] answers
// calls[i]. Unknown ids and handler errors are recorded in their own slot.
// If any unit crashes the whole batch is replaced by OneOfCallsFailed.
//
// ctx is handed to handlers that accept a context; Process itself never
// cancels a unit.
func (a *App) Process(ctx context.Context, calls []Call) ([]Response, error) {
	if len(calls) == 0 {
		return []Response{}, nil
	}

	responses := make([]Response, len(calls))
	pending := make([]<-chan outcome, len(calls))
	for i, call := range calls {
		proc, ok := a.registry.Lookup(call.Proc)
		if !ok {
			slog.Debug(fmt.Sprintf("%s - call(%s): procedure %d not found", dispatchLogPrefix, call.Key, call.Proc))
			responses[i] = Failure(call.Key, ProcedureNotFound(call.Proc))
			continue
		}
		pending[i] = a.spawn(ctx, proc, call)
	}

	for i, ch := range pending {
		if ch == nil {
			continue
		}
		out := <-ch
		if !out.completed {
			if out.recovered != nil {
				slog.Error(fmt.Sprintf("%s - call(%s) crashed: %s", dispatchLogPrefix, calls[i].Key, out.recovered.String()))
			} else {
				slog.Error(fmt.Sprintf("%s - call(%s) exited before returning", dispatchLogPrefix, calls[i].Key))
			}
			return nil, OneOfCallsFailed()
		}
		responses[i] = out.resp
	}
	return responses, nil
}

func (a *App) spawn(ctx context.Context, proc *Procedure, call Call) <-chan outcome {
	ch := make(chan outcome, 1)
	cc := &CallContext{
		Context:  ctx,
		Key:      call.Key,
		Args:     call.Args,
		App:      a.info,
		Provider: a.provider,
	}

	go func() {
		var out outcome
		defer func() { ch <- out }()

		var pc panics.Catcher
		pc.Try(func() {
			slog.Debug(fmt.Sprintf("%s - start processing call(%s): %s", dispatchLogPrefix, cc.Key, proc.name))
			out.resp = proc.execute(cc)
			out.completed = true
			slog.Debug(fmt.Sprintf("%s - end processing call(%s): %s", dispatchLogPrefix, cc.Key, proc.name))
		})
		if r := pc.Recovered(); r != nil {
			out.completed = false
			out.recovered = r
		}
	}()
	return ch
}
