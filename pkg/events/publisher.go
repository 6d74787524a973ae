package events

import "context"

// EventPublisher is the interface for publishing schema events.
type EventPublisher interface {
	PublishSchema(ctx context.Context, event *SchemaPublishedEvent) error
}

// NoOpPublisher is an EventPublisher that does nothing, used when COMMS is
// disabled.
type NoOpPublisher struct{}

// PublishSchema is a no-op.
func (p *NoOpPublisher) PublishSchema(_ context.Context, _ *SchemaPublishedEvent) error {
	return nil
}

// CallbackPublisher is an EventPublisher that calls a callback function.
type CallbackPublisher struct {
	callback func(ctx context.Context, event *SchemaPublishedEvent) error
}

// NewCallbackPublisher creates a new CallbackPublisher.
func NewCallbackPublisher(cb func(ctx context.Context, event *SchemaPublishedEvent) error) *CallbackPublisher {
	return &CallbackPublisher{callback: cb}
}

// PublishSchema calls the callback.
func (p *CallbackPublisher) PublishSchema(ctx context.Context, event *SchemaPublishedEvent) error {
	return p.callback(ctx, event)
}
