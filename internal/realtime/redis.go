package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alimgiray/lotdesk/internal/metrics"
	"github.com/alimgiray/lotdesk/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisChannel carries changes over Redis Pub/Sub so every server instance sees them
type RedisChannel struct {
	client *redis.Client
}

// NewRedisChannel wraps an existing client
func NewRedisChannel(client *redis.Client) *RedisChannel {
	return &RedisChannel{client: client}
}

func channelName(table string) string {
	return "realtime:" + table
}

// Publish sends the change as JSON on the table's channel
func (c *RedisChannel) Publish(ctx context.Context, change Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return err
	}
	if err := c.client.Publish(ctx, channelName(change.Table), data).Err(); err != nil {
		return fmt.Errorf("error publishing change: %w", err)
	}
	return nil
}

// Subscribe confirms the subscription before returning so no change published afterwards is missed
func (c *RedisChannel) Subscribe(ctx context.Context, table string) (<-chan Change, error) {
	pubsub := c.client.Subscribe(ctx, channelName(table))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("error subscribing to %s: %w", table, err)
	}

	out := make(chan Change, subscriberBuffer)
	messages := pubsub.Channel()

	go func() {
		defer close(out)
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					logger.WithError(err).Warn("Ignoring malformed realtime payload")
					continue
				}
				select {
				case out <- change:
				default:
					metrics.IncRealtimeDropped()
				}
			}
		}
	}()

	return out, nil
}
