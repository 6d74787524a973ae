package events

import (
	"context"
	"fmt"
	"log/slog"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/typed-rpc/pkg/commsutil"
)

const commsPublisherLogPrefix = "events:comms_publisher"

// CommsPublisherOpts configures CommsPublisher. Nil or zero values use defaults.
type CommsPublisherOpts struct {
	// GlobalSubject overrides the global schema event subject
	// (RPC_SCHEMA_EVENT_SUBJECT).
	GlobalSubject string
}

// CommsPublisher publishes schema events to COMMS subjects.
type CommsPublisher struct {
	nc            *comms.Conn
	globalSubject string
}

// NewCommsPublisher creates a new CommsPublisher. Pass nil for opts to use defaults.
func NewCommsPublisher(nc *comms.Conn, opts *CommsPublisherOpts) *CommsPublisher {
	globalSubject := commsutil.SubjectSchemaChanged
	if opts != nil && opts.GlobalSubject != "" {
		globalSubject = opts.GlobalSubject
	}
	return &CommsPublisher{nc: nc, globalSubject: globalSubject}
}

// PublishSchema publishes the event to the per-app subject, then to the
// global one, and flushes.
func (p *CommsPublisher) PublishSchema(ctx context.Context, event *SchemaPublishedEvent) error {
	data, err := commsutil.EncodePayload(event)
	if err != nil {
		return fmt.Errorf("%s - failed to encode event: %w", commsPublisherLogPrefix, err)
	}

	for _, subject := range []string{commsutil.BuildSchemaChangedSubject(event.App), p.globalSubject} {
		if err := p.nc.Publish(subject, data); err != nil {
			slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, subject, err))
			return fmt.Errorf("%s - publish to %s: %w", commsPublisherLogPrefix, subject, err)
		}
	}
	flush := p.nc.Flush
	if _, ok := ctx.Deadline(); ok {
		flush = func() error { return p.nc.FlushWithContext(ctx) }
	}
	if err := flush(); err != nil {
		return fmt.Errorf("%s - flush: %w", commsPublisherLogPrefix, err)
	}

	slog.Debug(fmt.Sprintf("%s - published schema event %s for %s (etag %s)", commsPublisherLogPrefix, event.ID, event.App, event.Etag))
	return nil
}
