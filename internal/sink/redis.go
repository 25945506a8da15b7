package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"terminal-voice-backend/internal/event"
)

// LastEventTTL bounds how long the per-container last-event key lives.
const LastEventTTL = 24 * time.Hour

// RedisClient is the part of *redis.Client the sink uses.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Redis publishes each event on a pub/sub channel and keeps the latest event
// per container under "<channel>:last:<containerNumber>".
type Redis struct {
	client  RedisClient
	channel string
}

func NewRedis(c RedisClient, channel string) *Redis {
	return &Redis{client: c, channel: channel}
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) Observe(ctx context.Context, ev event.Event) error {
	payload, err := event.Encode(ev)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", ev.Kind(), err)
	}
	if subject := ev.Subject(); subject != "" {
		key := fmt.Sprintf("%s:last:%s", r.channel, subject)
		if err := r.client.Set(ctx, key, payload, LastEventTTL).Err(); err != nil {
			return fmt.Errorf("redis set %s: %w", key, err)
		}
	}
	return nil
}
