package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RedisHandler 在 redis channel 上 PUBLISH 事件
type RedisHandler struct {
	client  *redis.Client
	channel string
}

func NewRedisHandler(client *redis.Client, channel string) *RedisHandler {
	return &RedisHandler{client: client, channel: channel}
}

func (h *RedisHandler) Name() string { return "redis" }

func (h *RedisHandler) HandleOrderCreated(ctx context.Context, evt OrderCreatedEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return h.client.Publish(ctx, h.channel, payload).Err()
}

func (h *RedisHandler) Close() error {
	return h.client.Close()
}
