// Package events publishes decision events to Kafka for downstream
// compliance and analytics consumption, once DA has committed a decision.
// It is the producer-side counterpart of the CDC consumer the teacher used
// for transaction analytics: the same library, pointed the other way.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"

	"github.com/enterprise/fraud-pipeline/configs"
	"github.com/enterprise/fraud-pipeline/internal/verdict"
)

// DecisionEvent is the compact audit record published after each commit.
type DecisionEvent struct {
	DocumentID  string           `json:"document_id"`
	IdentityKey string           `json:"identity_key"`
	Decision    verdict.Decision `json:"decision"`
	Source      verdict.Source   `json:"source"`
	Score       float64          `json:"score"`
	Timestamp   time.Time        `json:"timestamp"`
}

// Publisher publishes DecisionEvents to the configured Kafka topic.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher dials brokers with retry, matching the teacher's Kafka
// connection-retry pattern.
func NewPublisher(cfg configs.KafkaConfig) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Version = sarama.V3_0_0_0

	var producer sarama.SyncProducer
	var err error
	for i := 0; i < 30; i++ {
		producer, err = sarama.NewSyncProducer(cfg.Brokers, config)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to Kafka, retrying...")
		time.Sleep(5 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("events: connecting to Kafka: %w", err)
	}

	return &Publisher{producer: producer, topic: cfg.Topic}, nil
}

// Publish sends a DecisionEvent, keyed by identity so all events for one
// identity land on the same partition and stay ordered.
func (p *Publisher) Publish(event DecisionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshaling decision event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.IdentityKey),
		Value: sarama.ByteEncoder(payload),
	}

	_, _, err = p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("events: publishing decision event: %w", err)
	}
	return nil
}

// Close closes the underlying producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
