package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PubSub publishes dashboard events on redis channels.
type PubSub struct {
	client  *redis.Client
	channel string
}

// NewPubSub creates a PubSub publishing on channel.
func NewPubSub(client *redis.Client, channel string) *PubSub {
	return &PubSub{
		client:  client,
		channel: channel,
	}
}

// OrdersChanged announces orders whose content changed in the last poll cycle.
type OrdersChanged struct {
	TenantID  string   `json:"tenant_id"`
	OrderIDs  []string `json:"order_ids"`
	Timestamp int64    `json:"timestamp"`
}

// PublishOrdersChanged publishes event on the configured channel.
func (p *PubSub) PublishOrdersChanged(ctx context.Context, event *OrdersChanged) error {
	msgJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Subscribe subscribes to the configured channel.
func (p *PubSub) Subscribe(ctx context.Context) *redis.PubSub {
	return p.client.Subscribe(ctx, p.channel)
}
