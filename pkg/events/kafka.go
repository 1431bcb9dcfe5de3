package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hiveboard/hiveboard/pkg/models"
)

// KafkaConfig holds connection settings for the Kafka publisher
type KafkaConfig struct {
	Brokers      []string
	BatchSize    int
	BatchTimeout time.Duration
}

// DefaultKafkaConfig returns producer defaults suitable for local brokers
func DefaultKafkaConfig(brokers []string) KafkaConfig {
	return KafkaConfig{
		Brokers:      brokers,
		BatchSize:    100,
		BatchTimeout: time.Millisecond,
	}
}

// KafkaPublisher implements Publisher on a shared kafka-go writer
type KafkaPublisher struct {
	writer *kafka.Writer
	mu     sync.RWMutex
	health models.HealthStatus
}

// NewKafkaPublisher creates a publisher. The writer connects lazily; broker
// availability surfaces on the first Publish.
func NewKafkaPublisher(config KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(config.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchSize:    config.BatchSize,
			BatchTimeout: config.BatchTimeout,
			Compression:  kafka.Snappy,
			RequiredAcks: kafka.RequireOne,
		},
		health: models.HealthUnknown,
	}
}

// Publish sends the event to its topic, keyed by event ID
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := kafka.Message{
		Topic: event.Type.Topic(),
		Key:   []byte(event.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "source", Value: []byte(event.Source)},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339Nano))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.setHealth(models.HealthUnhealthy)
		return fmt.Errorf("publish event %s: %w", event.Type, err)
	}

	p.setHealth(models.HealthHealthy)
	return nil
}

// Health reports the last observed publish health
func (p *KafkaPublisher) Health() models.HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health
}

// Close flushes and closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) setHealth(h models.HealthStatus) {
	p.mu.Lock()
	p.health = h
	p.mu.Unlock()
}
