package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anandpskerala/ArticleHubBackend/pkg/retry"
	"github.com/twmb/franz-go/pkg/kgo"
)

// ErrProducerClosed is returned when producing on a closed producer
var ErrProducerClosed = errors.New("kafka producer is closed")

// ProducerConfig holds configuration for the Kafka producer
type ProducerConfig struct {
	Brokers       []string
	ClientID      string
	MaxRetries    int
	RetryInterval time.Duration
	Linger        time.Duration
}

// Producer publishes records through a franz-go client
type Producer struct {
	client *kgo.Client
	config *ProducerConfig
}

// NewProducer creates a producer and verifies the brokers are reachable
func NewProducer(ctx context.Context, cfg *ProducerConfig) (*Producer, error) {
	if cfg == nil || len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = 2 * time.Second
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(cfg.Linger),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %w", err)
	}

	err = retry.Do(ctx, retry.Fixed(cfg.MaxRetries+1, cfg.RetryInterval), client.Ping, nil)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Kafka: %w", err)
	}

	return &Producer{client: client, config: cfg}, nil
}

// Produce synchronously writes a single record
func (p *Producer) Produce(ctx context.Context, record *kgo.Record) error {
	if p == nil || p.client == nil {
		return ErrProducerClosed
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce to %s: %w", record.Topic, err)
	}
	return nil
}

// ProduceJSON marshals v and writes it to topic under key
func (p *Producer) ProduceJSON(ctx context.Context, topic, key string, v interface{}, headers map[string]string) error {
	record, err := NewJSONRecord(topic, key, v, headers)
	if err != nil {
		return err
	}
	return p.Produce(ctx, record)
}

// Close flushes pending records and closes the client
func (p *Producer) Close() {
	if p == nil || p.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
	p.client = nil
}

// NewJSONRecord builds a record with a JSON value and string headers
func NewJSONRecord(topic, key string, v interface{}, headers map[string]string) (*kgo.Record, error) {
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}

	value, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record value: %w", err)
	}

	record := &kgo.Record{
		Topic: topic,
		Value: value,
	}
	if key != "" {
		record.Key = []byte(key)
	}
	record.Headers = append(record.Headers, kgo.RecordHeader{Key: "content-type", Value: []byte("application/json")})
	for k, hv := range headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(hv)})
	}

	return record, nil
}
