package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/experience-booking/internal/queue"
)

// EventPublisher publishes booking events after the reservation has
// committed.  Publishing is best effort: a failure never undoes a booking.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, event queue.BookingConfirmedEvent) error
}

// NoopPublisher drops every event.  It is used when the queue is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookingConfirmed(context.Context, queue.BookingConfirmedEvent) error {
	return nil
}

// AMQPPublisher sends booking events to a durable RabbitMQ queue through
// the default exchange.  The connection is opened on first use and
// reopened after any failure; publishes are serialised on one channel.
type AMQPPublisher struct {
	url   string
	queue string
	log   logrus.FieldLogger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher returns a publisher for queueName on the broker at url.
// No connection is made until the first publish.
func NewAMQPPublisher(url, queueName string, log logrus.FieldLogger) *AMQPPublisher {
	return &AMQPPublisher{url: url, queue: queueName, log: log}
}

// PublishBookingConfirmed publishes event as a persistent JSON message with
// the booking id as message id, so consumers can drop redeliveries.
func (p *AMQPPublisher) PublishBookingConfirmed(ctx context.Context, event queue.BookingConfirmedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal booking.confirmed: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.BookingID,
		Timestamp:    time.Now().UTC(),
		Type:         p.queue,
		Body:         body,
	})
	if err != nil {
		p.reset()
		return fmt.Errorf("publish booking.confirmed: %w", err)
	}
	p.log.WithField("booking_id", event.BookingID).Debug("booking.confirmed published")
	return nil
}

// channel returns the open channel, dialling and declaring the queue when
// there is none.  Callers hold p.mu.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", p.queue, err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

// reset drops the current connection.  Callers hold p.mu.
func (p *AMQPPublisher) reset() {
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// Close releases the broker connection, if any.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
