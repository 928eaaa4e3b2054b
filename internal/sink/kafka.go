package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/flarewatch/flarewatch/internal/watch"
)

// KafkaConfig holds the Kafka sink settings.
type KafkaConfig struct {
	Addresses []string `yaml:"addresses"`
	Topic     string   `yaml:"topic"`
}

// KafkaSink produces each event to one topic, keyed by the watch instance id
// so all events of one watch land on the same partition in order.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink connects a producer to the given brokers.
func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("kafka sink: no broker addresses")
	}
	if cfg.Topic == "" {
		cfg.Topic = "flarewatch.events"
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Addresses...),
		kgo.DefaultProduceTopic(cfg.Topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &KafkaSink{client: client, topic: cfg.Topic}, nil
}

func (s *KafkaSink) Publish(ctx context.Context, events []watch.Event) error {
	records := make([]*kgo.Record, 0, len(events))
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", ev.ID, err)
		}
		records = append(records, &kgo.Record{
			Topic: s.topic,
			Key:   []byte(ev.Watch),
			Value: data,
		})
	}

	if err := s.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce events: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	s.client.Close()
	return nil
}
