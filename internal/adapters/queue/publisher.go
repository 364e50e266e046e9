// Package queue publishes booking events to RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"roombook/internal/domain"
)

// BookingEventsQueue is the durable queue booking events are routed to.
const BookingEventsQueue = "booking.events"

// channel is the subset of *amqp.Channel used by the publisher.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type rabbitPublisher struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     channel
	queue  string
	logger *slog.Logger
}

// NewPublisher returns a RabbitMQ publisher when url is set, otherwise a publisher that only logs.
// The returned close func releases the broker connection.
func NewPublisher(url string, logger *slog.Logger) (domain.BookingEventPublisher, func() error, error) {
	if url == "" {
		return &noopPublisher{logger: logger}, func() error { return nil }, nil
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		BookingEventsQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare queue: %w", err)
	}
	p := &rabbitPublisher{conn: conn, ch: ch, queue: BookingEventsQueue, logger: logger}
	return p, p.Close, nil
}

// Publish sends event as a persistent JSON message to the default exchange.
func (p *rabbitPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         event.Type,
		MessageId:    event.BookingID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	p.logger.DebugContext(ctx, "booking event published", "type", event.Type, "booking_id", event.BookingID)
	return nil
}

// Close closes the channel and the connection.
func (p *rabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	chErr := p.ch.Close()
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return err
		}
	}
	return chErr
}

type noopPublisher struct {
	logger *slog.Logger
}

func (n *noopPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	n.logger.DebugContext(ctx, "booking event dropped (noop)", "type", event.Type, "booking_id", event.BookingID)
	return nil
}
