package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	comms "github.com/nats-io/nats.go"

	"github.com/morezero/typed-rpc/pkg/rpc"
)

const commsLogPrefix = "server:comms"

// subscribe answers call batches on callSubject and schema requests on
// schemaSubject. Each batch gets its own deadline derived from ctx.
func subscribe(ctx context.Context, nc *comms.Conn, app *rpc.App, callSubject, schemaSubject string, timeout time.Duration) ([]*comms.Subscription, error) {
	callSub, err := nc.Subscribe(callSubject, func(msg *comms.Msg) {
		batchID := uuid.NewString()
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		res := runBatch(reqCtx, app, msg.Data, batchID)
		respond(msg, res.body)
	})
	if err != nil {
		return nil, fmt.Errorf("%s - failed to subscribe to %s: %w", commsLogPrefix, callSubject, err)
	}
	slog.Info(fmt.Sprintf("%s - subscribed to %s", commsLogPrefix, callSubject))

	schemaSub, err := nc.Subscribe(schemaSubject, func(msg *comms.Msg) {
		data, err := app.SchemaJSON()
		if err != nil {
			slog.Error(fmt.Sprintf("%s - schema generation failed: %v", commsLogPrefix, err))
			data = errorResult(err).body
		}
		respond(msg, data)
	})
	if err != nil {
		_ = callSub.Unsubscribe()
		return nil, fmt.Errorf("%s - failed to subscribe to %s: %w", commsLogPrefix, schemaSubject, err)
	}
	slog.Info(fmt.Sprintf("%s - subscribed to %s", commsLogPrefix, schemaSubject))

	return []*comms.Subscription{callSub, schemaSub}, nil
}

func respond(msg *comms.Msg, data []byte) {
	if msg.Reply == "" {
		slog.Warn(fmt.Sprintf("%s - message on %s has no reply subject, dropping reply", commsLogPrefix, msg.Subject))
		return
	}
	if err := msg.Respond(data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to respond on %s: %v", commsLogPrefix, msg.Subject, err))
	}
}
