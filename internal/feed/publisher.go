package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gokatarajesh/trivia-api/internal/question"
)

// DefaultChannel carries question change events when none is configured.
const DefaultChannel = "trivia:questions"

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Publisher sends question events to a Redis Pub/Sub channel.
type Publisher struct {
	redis   redisPublisher
	channel string
}

var _ question.Publisher = (*Publisher)(nil)

// NewPublisher creates a Redis backed question.Publisher.
func NewPublisher(client redisPublisher, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{redis: client, channel: channel}
}

// Publish encodes evt as JSON and publishes it.
func (p *Publisher) Publish(ctx context.Context, evt question.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", evt.Type, err)
	}
	if err := p.redis.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", evt.Type, err)
	}
	return nil
}
