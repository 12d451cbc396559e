package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/streadway/amqp"
)

const RoutingKeyReportSubmitted = "report.submitted"

// Publisher delivers domain events to interested consumers.
type Publisher interface {
	Publish(routingKey string, message interface{}) error
	Close() error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(string, interface{}) error { return nil }
func (NoopPublisher) Close() error                      { return nil }

// AMQPPublisher sends JSON messages to a durable direct exchange and reconnects
// once if the channel was closed underneath it.
type AMQPPublisher struct {
	mu       sync.Mutex
	amqpURL  string
	exchange string
	conn     *amqp.Connection
	channel  *amqp.Channel
}

func NewAMQPPublisher(amqpURL, exchange string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{amqpURL: amqpURL, exchange: exchange}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) Publish(routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message to JSON: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		if err := p.connectLocked(); err != nil {
			return err
		}
	}
	err = p.channel.Publish(p.exchange, routingKey, false, false, publishing)
	if err == nil {
		return nil
	}

	log.WithError(err).Warn("Publish failed, reconnecting to RabbitMQ")
	p.closeLocked()
	if err := p.connectLocked(); err != nil {
		return err
	}
	return p.channel.Publish(p.exchange, routingKey, false, false, publishing)
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *AMQPPublisher) connectLocked() error {
	conn, err := amqp.Dial(p.amqpURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(p.exchange, "direct", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = ch
	return nil
}

func (p *AMQPPublisher) closeLocked() error {
	var err error
	if p.channel != nil {
		if channelErr := p.channel.Close(); channelErr != nil {
			err = channelErr
		}
		p.channel = nil
	}
	if p.conn != nil {
		if connErr := p.conn.Close(); connErr != nil && err == nil {
			err = connErr
		}
		p.conn = nil
	}
	return err
}
