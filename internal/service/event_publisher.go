package service

import (
	"context"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
)

// EventPublisher announces article changes to other services
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.ArticleEvent) error
}

// JSONProducer is the part of the Kafka producer the publisher needs
type JSONProducer interface {
	ProduceJSON(ctx context.Context, topic, key string, v interface{}, headers map[string]string) error
}

// KafkaEventPublisher writes events keyed by article id so one article's
// events stay ordered within a partition.
type KafkaEventPublisher struct {
	producer JSONProducer
	topic    string
}

// NewKafkaEventPublisher creates a publisher for topic
func NewKafkaEventPublisher(producer JSONProducer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

// Publish writes event synchronously
func (p *KafkaEventPublisher) Publish(ctx context.Context, event *domain.ArticleEvent) error {
	return p.producer.ProduceJSON(ctx, p.topic, event.ArticleID, event, map[string]string{
		"event-type": string(event.Type),
	})
}

// NoopEventPublisher drops events; used when Kafka is disabled
type NoopEventPublisher struct{}

// Publish does nothing
func (NoopEventPublisher) Publish(context.Context, *domain.ArticleEvent) error { return nil }
