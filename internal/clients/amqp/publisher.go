package amqp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"max.ks1230/expenses-api/internal/entity/expense"
	"max.ks1230/expenses-api/internal/logger"
)

const publishTimeout = 5 * time.Second

type config interface {
	URL() string
	Exchange() string
	Queue() string
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends expense events to a durable direct exchange. The queue is
// bound with its own name as routing key.
type Publisher struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
	queue    string
}

func NewPublisher(cfg config) (*Publisher, error) {
	conn, err := amqp091.Dial(cfg.URL())
	if err != nil {
		return nil, errors.Wrap(err, "dial amqp")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	if err = setup(ch, cfg.Exchange(), cfg.Queue()); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "setup exchange and queue")
	}

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange(),
		queue:    cfg.Queue(),
	}, nil
}

func setup(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "declare exchange")
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "declare queue")
	}
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return errors.Wrap(err, "bind queue")
	}
	return nil
}

func (p *Publisher) Publish(ctx context.Context, event expense.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, p.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return errors.Wrap(err, "publish event")
	}

	logger.Debug("event published",
		zap.String("type", string(event.Type)),
		zap.String("exchange", p.exchange),
		zap.String("queue", p.queue),
	)
	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
