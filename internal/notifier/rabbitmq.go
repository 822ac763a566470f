package notifier

import (
	"ClassBridge/internal/models"
	"ClassBridge/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// AMQPNotifier publishes domain events to a RabbitMQ direct exchange. Events
// pass through a bounded buffer drained by a background goroutine, so Publish
// returns immediately; when the buffer is full the event is dropped and logged.
// Per-entity ordering follows the order Publish was called in.
type AMQPNotifier struct {
	log        logger.Log
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
	queue      chan models.Event
	done       chan struct{}
}

func NewAMQPNotifier(log logger.Log, url, exchange, routingKey, queueName string, buffer int) (*AMQPNotifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(exchange, "direct", true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(queue.Name, routingKey, exchange, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	if buffer <= 0 {
		buffer = 256
	}

	n := &AMQPNotifier{
		log:        log,
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		queue:      make(chan models.Event, buffer),
		done:       make(chan struct{}),
	}
	go n.run()

	log.Info("connected to RabbitMQ",
		"exchange", exchange,
		"queue", queue.Name,
		"routing_key", routingKey,
	)
	return n, nil
}

func (n *AMQPNotifier) Publish(event models.Event) {
	select {
	case n.queue <- event:
	default:
		n.log.Warn("event buffer full, dropping event", "type", event.Type)
	}
}

func (n *AMQPNotifier) run() {
	defer close(n.done)
	for event := range n.queue {
		if err := n.publish(event); err != nil {
			n.log.ErrorErr("failed to publish event", err, "type", event.Type)
		}
	}
}

func (n *AMQPNotifier) publish(event models.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	return n.channel.PublishWithContext(
		ctx,
		n.exchange,
		n.routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.OccurredAt,
		},
	)
}

// Close stops the drain goroutine after the buffer empties and tears down the
// AMQP connection.
func (n *AMQPNotifier) Close() error {
	close(n.queue)
	<-n.done

	if n.channel != nil {
		if err := n.channel.Close(); err != nil {
			n.log.ErrorErr("failed to close RabbitMQ channel", err)
		}
	}
	if n.conn != nil {
		if err := n.conn.Close(); err != nil {
			return err
		}
	}
	return nil
}
