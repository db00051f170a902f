package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher sends a payload to an external message channel. Publish never
// blocks the caller and never fails the originating operation; delivery
// outcome is observable only through logs.
type Publisher interface {
	Publish(topic, key string, payload any)
}

// StreamPublisher appends messages to Redis Streams, one stream per topic.
type StreamPublisher struct {
	client *redis.Client
	logger *zap.Logger
}

// NewStreamPublisher builds a publisher over an existing Redis client.
func NewStreamPublisher(client *redis.Client, logger *zap.Logger) *StreamPublisher {
	return &StreamPublisher{client: client, logger: logger}
}

// Publish serializes the payload and appends it to the topic's stream in the
// background. The send uses its own context so an already-finished request
// cannot cancel delivery.
func (p *StreamPublisher) Publish(topic, key string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to encode event payload",
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err))
		return
	}

	go func() {
		id, err := p.client.XAdd(context.Background(), &redis.XAddArgs{
			Stream: topic,
			Values: map[string]any{"key": key, "payload": string(body)},
		}).Result()
		if err != nil {
			p.logger.Error("failed to publish event",
				zap.String("topic", topic),
				zap.String("key", key),
				zap.Error(err))
			return
		}
		p.logger.Info("event published",
			zap.String("topic", topic),
			zap.String("key", key),
			zap.String("stream_id", id))
	}()
}
