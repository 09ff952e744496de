package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"partsflow/internal/features/orders/domain"

	"github.com/streadway/amqp"
)

const trackingQueue = "tracking_events"

// AMQPPublisher implements ports.EventPublisher over RabbitMQ. One durable
// queue carries every appended tracking event as a JSON message.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPPublisher connects to the broker and declares the tracking queue.
func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		trackingQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s queue: %w", trackingQueue, err)
	}

	return &AMQPPublisher{
		conn:    conn,
		channel: ch,
	}, nil
}

// trackingEventMessage is the published payload.
type trackingEventMessage struct {
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
}

// PublishTrackingEvent publishes one tracking event as a persistent message.
func (p *AMQPPublisher) PublishTrackingEvent(_ context.Context, orderID string, event domain.TrackingEvent) error {
	body, err := json.Marshal(trackingEventMessage{
		OrderID:     orderID,
		Status:      string(event.Status),
		Location:    event.Location,
		Timestamp:   event.Timestamp.Format(time.RFC3339),
		Description: event.Description,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal tracking event: %w", err)
	}

	err = p.channel.Publish(
		"",            // default exchange
		trackingQueue, // routing key
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish tracking event: %w", err)
	}

	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

// NoopPublisher implements ports.EventPublisher when no broker is configured.
type NoopPublisher struct{}

// PublishTrackingEvent discards the event.
func (NoopPublisher) PublishTrackingEvent(context.Context, string, domain.TrackingEvent) error {
	return nil
}
