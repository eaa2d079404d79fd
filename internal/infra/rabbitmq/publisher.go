package rabbitmq

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *zap.Logger
}

// Envelope is the message body placed on the exchange; Pattern doubles as the routing key.
type Envelope struct {
	Pattern string      `json:"pattern"`
	Data    interface{} `json:"data"`
	ID      string      `json:"id,omitempty"`
}

func NewPublisher(amqpURL, exchange string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, errors.Wrap(err, "connect to RabbitMQ")
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, errors.Wrap(err, "declare exchange")
	}

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		log:      log,
	}, nil
}

func encode(pattern string, data interface{}) ([]byte, error) {
	body, err := json.Marshal(Envelope{
		Pattern: pattern,
		Data:    data,
		ID:      uuid.NewString(),
	})
	return body, errors.Wrap(err, "marshal message")
}

func (p *Publisher) Publish(ctx context.Context, pattern string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := encode(pattern, data)
	if err != nil {
		return err
	}

	p.log.Debug("publishing message", zap.String("pattern", pattern), zap.String("exchange", p.exchange))

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.Publish(
		p.exchange,
		pattern,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	return errors.Wrap(err, "publish message")
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct {
	Log *zap.Logger
}

func (n NopPublisher) Publish(_ context.Context, pattern string, _ interface{}) error {
	n.Log.Debug("broker not configured, event dropped", zap.String("pattern", pattern))
	return nil
}
