// Package events moves social events between the API server and the
// notification worker.
package events

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/models"
	"github.com/tranki-app/tranki-backend/pkg/messagequeue"
)

// QueuePublisher writes social events as JSON to a message queue.
type QueuePublisher struct {
	queue     messagequeue.MessageQueue
	queueName string
	logger    *zap.Logger
}

// NewQueuePublisher creates a QueuePublisher for queueName.
func NewQueuePublisher(queue messagequeue.MessageQueue, queueName string, logger *zap.Logger) *QueuePublisher {
	return &QueuePublisher{queue: queue, queueName: queueName, logger: logger}
}

// Publish enqueues event. Failures are logged; the social mutation already happened.
func (p *QueuePublisher) Publish(ctx context.Context, event models.SocialEvent) {
	if !Notifies(event) {
		return
	}
	event.Recipients = nil
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal social event", zap.String("type", event.Type), zap.Error(err))
		return
	}
	if err := p.queue.Publish(ctx, p.queueName, body); err != nil {
		p.logger.Error("Failed to publish social event",
			zap.String("type", event.Type),
			zap.String("queue", p.queueName),
			zap.Error(err))
	}
}

// Notifies reports whether event produces an email for its target.
func Notifies(event models.SocialEvent) bool {
	if event.ActorID == event.TargetID {
		return false
	}
	_, ok := templates[event.Type]
	return ok
}
