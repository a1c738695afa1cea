package kafka

import (
	"context"
	"encoding/json"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expenses-api/internal/entity/expense"
	"max.ks1230/expenses-api/internal/logger"
)

type producerConfig interface {
	Brokers() []string
	EventsTopic() string
}

// Producer publishes expense events keyed by owner, so one user's events land
// on one partition in order.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(cfg producerConfig) (*Producer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers(), newSaramaConfig())
	if err != nil {
		return nil, errors.Wrap(err, "init kafka producer")
	}
	return newProducer(producer, cfg.EventsTopic()), nil
}

func newSaramaConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true
	return config
}

func newProducer(producer sarama.SyncProducer, topic string) *Producer {
	return &Producer{
		producer: producer,
		topic:    topic,
	}
}

func (p *Producer) Publish(_ context.Context, event expense.Event) error {
	message, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.UserID.String()),
		Value: sarama.ByteEncoder(message),
	})
	if err != nil {
		return errors.Wrap(err, "send event")
	}
	logger.Debug("event produced",
		zap.String("type", string(event.Type)),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (p *Producer) Close() error {
	err := p.producer.Close()
	if err != nil {
		logger.Error("failed to close producer", zap.Error(err))
	}
	return err
}
