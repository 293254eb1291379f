// Package queue provides the Redis-backed transport between document
// ingestion and the fraud pipeline worker, plus a general-purpose cache
// client reused for the per-identity submission lock described in spec.md
// §5.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/enterprise/fraud-pipeline/configs"
)

// DocumentEvent is the payload carried on the ingestion stream: a
// normalized document plus its raw OCR text, queued for asynchronous
// scoring. It supersedes the teacher's TransactionEvent.
type DocumentEvent struct {
	DocumentID  string          `json:"document_id"`
	Kind        string          `json:"kind"`
	DocumentRaw json.RawMessage `json:"document"`
	RawText     string          `json:"raw_text"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// RedisStreamClient handles Redis Streams operations for document ingestion.
type RedisStreamClient struct {
	client           *redis.Client
	streamName       string
	consumerGroup    string
	deadLetterStream string
	maxRetries       int
}

// NewRedisStreamClient creates a new Redis stream client.
func NewRedisStreamClient(cfg configs.RedisConfig) (*RedisStreamClient, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	rsc := &RedisStreamClient{
		client:           client,
		streamName:       cfg.StreamName,
		consumerGroup:    cfg.ConsumerGroup,
		deadLetterStream: cfg.StreamName + "-dlq",
		maxRetries:       cfg.MaxRetries,
	}

	if err := rsc.createConsumerGroup(ctx); err != nil {
		log.Warn().Err(err).Msg("Consumer group may already exist")
	}

	log.Info().Msg("Redis Stream client initialized")
	return rsc, nil
}

func (r *RedisStreamClient) createConsumerGroup(ctx context.Context) error {
	err := r.client.XGroupCreateMkStream(ctx, r.streamName, r.consumerGroup, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}
	return nil
}

// Publish publishes a document event to the stream.
func (r *RedisStreamClient) Publish(ctx context.Context, event *DocumentEvent) (string, error) {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	msgID, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.streamName,
		Values: map[string]interface{}{"data": string(eventJSON)},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().
		Str("message_id", msgID).
		Str("document_id", event.DocumentID).
		Msg("Event published to stream")

	return msgID, nil
}

// Consume consumes events from the stream, preferring abandoned pending
// messages over new ones so a crashed consumer's work is not lost.
func (r *RedisStreamClient) Consume(ctx context.Context, consumerName string, count int64, blockDuration time.Duration) ([]StreamMessage, error) {
	pendingMessages, err := r.claimPendingMessages(ctx, consumerName, count)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to claim pending messages")
	}
	if len(pendingMessages) > 0 {
		return pendingMessages, nil
	}

	streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    r.consumerGroup,
		Consumer: consumerName,
		Streams:  []string{r.streamName, ">"},
		Count:    count,
		Block:    blockDuration,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from stream: %w", err)
	}

	var messages []StreamMessage
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			event, err := r.parseMessage(msg)
			if err != nil {
				log.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to parse message")
				continue
			}
			messages = append(messages, StreamMessage{ID: msg.ID, Event: event})
		}
	}

	return messages, nil
}

func (r *RedisStreamClient) claimPendingMessages(ctx context.Context, consumerName string, count int64) ([]StreamMessage, error) {
	minIdleTime := 30 * time.Second

	pending, err := r.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: r.streamName,
		Group:  r.consumerGroup,
		Start:  "-",
		End:    "+",
		Count:  count,
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}

	var messageIDs []string
	for _, p := range pending {
		if p.Idle >= minIdleTime {
			messageIDs = append(messageIDs, p.ID)
		}
	}
	if len(messageIDs) == 0 {
		return nil, nil
	}

	claimed, err := r.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   r.streamName,
		Group:    r.consumerGroup,
		Consumer: consumerName,
		MinIdle:  minIdleTime,
		Messages: messageIDs,
	}).Result()
	if err != nil {
		return nil, err
	}

	var messages []StreamMessage
	for _, msg := range claimed {
		event, err := r.parseMessage(msg)
		if err != nil {
			log.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to parse claimed message")
			continue
		}
		messages = append(messages, StreamMessage{ID: msg.ID, Event: event})
	}

	return messages, nil
}

func (r *RedisStreamClient) parseMessage(msg redis.XMessage) (*DocumentEvent, error) {
	data, ok := msg.Values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid message format")
	}
	var event DocumentEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &event, nil
}

// Acknowledge acknowledges a message as processed.
func (r *RedisStreamClient) Acknowledge(ctx context.Context, messageID string) error {
	if _, err := r.client.XAck(ctx, r.streamName, r.consumerGroup, messageID).Result(); err != nil {
		return fmt.Errorf("failed to acknowledge message: %w", err)
	}
	return nil
}

// SendToDeadLetter sends a failed message to the dead letter stream.
func (r *RedisStreamClient) SendToDeadLetter(ctx context.Context, event *DocumentEvent, cause error) error {
	eventJSON, _ := json.Marshal(event)

	_, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.deadLetterStream,
		Values: map[string]interface{}{
			"data":  string(eventJSON),
			"error": cause.Error(),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to send to dead letter: %w", err)
	}

	log.Warn().Str("document_id", event.DocumentID).Err(cause).Msg("Message sent to dead letter queue")
	return nil
}

// Close closes the Redis client.
func (r *RedisStreamClient) Close() error {
	return r.client.Close()
}

// StreamMessage represents a message from the stream.
type StreamMessage struct {
	ID    string
	Event *DocumentEvent
}
