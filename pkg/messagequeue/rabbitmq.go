package messagequeue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// ErrChannelClosed is returned by Consume when the broker closes the delivery channel.
var ErrChannelClosed = errors.New("rabbitmq delivery channel closed")

// RabbitMQService implements the MessageQueue interface using RabbitMQ.
type RabbitMQService struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger

	// amqp.Channel is not safe for concurrent publishes.
	mu       sync.Mutex
	declared map[string]bool
}

// NewRabbitMQServiceConfig contains options for creating a new RabbitMQService.
type NewRabbitMQServiceConfig struct {
	URL string
	// Prefetch bounds unacknowledged deliveries per consumer. Zero means 1.
	Prefetch int
}

// NewRabbitMQService dials the broker and opens a channel.
func NewRabbitMQService(cfg NewRabbitMQServiceConfig, logger *zap.Logger) (*RabbitMQService, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set rabbitmq qos: %w", err)
	}

	logger.Info("Connected to RabbitMQ")
	return &RabbitMQService{conn: conn, channel: ch, logger: logger, declared: make(map[string]bool)}, nil
}

func (s *RabbitMQService) declare(queueName string) error {
	if s.declared[queueName] {
		return nil
	}
	_, err := s.channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}
	s.declared[queueName] = true
	return nil
}

// Publish sends a persistent JSON message to a RabbitMQ queue.
func (s *RabbitMQService) Publish(ctx context.Context, queueName string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.declare(queueName); err != nil {
		return err
	}
	err := s.channel.Publish(
		"",        // exchange
		queueName, // routing key (queue name)
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", queueName, err)
	}
	s.logger.Debug("Published message", zap.String("queue", queueName), zap.Int("bytes", len(body)))
	return nil
}

// Consume acknowledges deliveries the handler accepts. A failed delivery is
// requeued once and dropped if it fails again.
func (s *RabbitMQService) Consume(ctx context.Context, queueName string, handler Handler) error {
	s.mu.Lock()
	err := s.declare(queueName)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	msgs, err := s.channel.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer for queue %s: %w", queueName, err)
	}

	s.logger.Info("Waiting for messages", zap.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return ErrChannelClosed
			}
			dispatch(ctx, d, handler, s.logger.With(zap.String("queue", queueName)))
		}
	}
}

// dispatch runs handler on one delivery. A first failure requeues it, a
// failure on redelivery drops it.
func dispatch(ctx context.Context, d amqp.Delivery, handler Handler, logger *zap.Logger) {
	if err := handler(ctx, d.Body); err != nil {
		logger.Warn("Message handler failed",
			zap.Bool("redelivered", d.Redelivered),
			zap.Error(err))
		if nackErr := d.Nack(false, !d.Redelivered); nackErr != nil {
			logger.Error("Failed to nack message", zap.Error(nackErr))
		}
		return
	}
	if err := d.Ack(false); err != nil {
		logger.Error("Failed to ack message", zap.Error(err))
	}
}

// Close closes the RabbitMQ channel and connection.
func (s *RabbitMQService) Close() error {
	var lastErr error
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			s.logger.Warn("Error closing RabbitMQ channel", zap.Error(err))
			lastErr = err
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.logger.Warn("Error closing RabbitMQ connection", zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}
