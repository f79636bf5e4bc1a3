// Package service holds the RabbitMQ publisher behind the reservation
// engine's event sink. Errors are logged and returned so callers can ignore
// failures without interrupting the main request flow.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/deskhive/workspace-reservation/internal/queue"
)

// EventPublisher publishes state-change events to the booking.events queue.
// It dials per publish so a broker restart never leaves the service holding
// a dead connection; messages are marked persistent.
type EventPublisher struct {
	url string
}

// NewEventPublisher returns a publisher bound to the given AMQP URL.
func NewEventPublisher(url string) *EventPublisher {
	return &EventPublisher{url: url}
}

// Publish sends one StateChangedEvent to the booking.events queue. The
// method never panics; any error is logged and returned so the caller can
// choose to ignore it.
func (p *EventPublisher) Publish(ctx context.Context, event q.StateChangedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.EventQueueName, // name
		true,             // durable
		false,            // autoDelete
		false,            // exclusive
		false,            // noWait
		nil,              // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",               // default exchange
		q.EventQueueName, // routing key = queue name
		false,            // mandatory
		false,            // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
