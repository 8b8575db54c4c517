// Package kafka publishes stored attendance events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"fieldcheck/internal/config"
	"fieldcheck/internal/domain"

	"github.com/twmb/franz-go/pkg/kgo"
)

const defaultProduceTimeout = 5 * time.Second

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Publisher writes one record per event, keyed by actor so an actor's
// events stay ordered within a partition.
type Publisher struct {
	client  producer
	topic   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewPublisher(cfg config.KafkaConfig, logger *slog.Logger) (*Publisher, error) {
	timeout := cfg.ProduceTimeout
	if timeout <= 0 {
		timeout = defaultProduceTimeout
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RecordDeliveryTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	logger.Info("Kafka publisher created", slog.Any("brokers", cfg.Brokers), slog.String("topic", cfg.Topic))
	return &Publisher{client: client, topic: cfg.Topic, timeout: timeout, logger: logger}, nil
}

func (p *Publisher) Name() string { return "kafka" }

func (p *Publisher) Notify(ctx context.Context, ev domain.AttendanceEvent) error {
	value, err := json.Marshal(domain.NewEventNotification(ev))
	if err != nil {
		return fmt.Errorf("kafka.Publisher.Notify: marshal: %w", err)
	}

	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(ev.ActorID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(ev.EventType)},
			{Key: "event_id", Value: []byte(ev.ID.String())},
		},
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("kafka.Publisher.Notify: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Close()
}
