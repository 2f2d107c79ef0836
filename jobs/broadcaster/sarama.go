package broadcaster

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/cockroachdb/errors"
)

// SaramaPublisher publishes through a sarama sync producer that waits
// for all in-sync replicas.
type SaramaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewSaramaPublisher(brokers []string, topic string) (*SaramaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "sarama producer")
	}
	return NewSaramaPublisherFromProducer(producer, topic), nil
}

func NewSaramaPublisherFromProducer(producer sarama.SyncProducer, topic string) *SaramaPublisher {
	return &SaramaPublisher{producer: producer, topic: topic}
}

func (p *SaramaPublisher) Publish(_ context.Context, key []byte, value []byte) error {
	_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	return errors.Wrap(err, "sarama publish")
}

func (p *SaramaPublisher) Close() error {
	return p.producer.Close()
}
