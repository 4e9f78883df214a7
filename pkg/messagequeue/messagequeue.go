// Package messagequeue publishes and consumes durable queue messages.
package messagequeue

import "context"

// Handler processes one delivery. A non-nil error requeues the message once.
type Handler func(ctx context.Context, body []byte) error

// MessageQueue defines the interface for message queue services.
type MessageQueue interface {
	Publish(ctx context.Context, queueName string, body []byte) error
	// Consume blocks, dispatching deliveries to handler until ctx is cancelled.
	Consume(ctx context.Context, queueName string, handler Handler) error
	Close() error
}
