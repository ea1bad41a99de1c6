package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gosuda/kanban/internal/domain"
)

// DefaultBoardChannel is the channel board events are published on when no
// other channel is configured.
const DefaultBoardChannel = "kanban:board"

type PubSub struct {
	client  *redis.Client
	channel string
}

func New(ctx context.Context, addr, password string, db int, channel string) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return NewFromClient(client, channel), nil
}

// NewFromClient wraps an existing client. An empty channel selects
// DefaultBoardChannel.
func NewFromClient(client *redis.Client, channel string) *PubSub {
	if channel == "" {
		channel = DefaultBoardChannel
	}
	return &PubSub{client: client, channel: channel}
}

func (ps *PubSub) Close() error {
	if err := ps.client.Close(); err != nil {
		return fmt.Errorf("redis.PubSub.Close: %w", err)
	}
	return nil
}

// Channel returns the board channel name.
func (ps *PubSub) Channel() string { return ps.channel }

func (ps *PubSub) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := ps.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis.PubSub.Publish: %w", err)
	}
	return nil
}

func (ps *PubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	sub := ps.client.Subscribe(ctx, channel)

	// Wait for subscription confirmation.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis.PubSub.Subscribe: receive confirmation: %w", err)
	}

	out := make(chan []byte, 64)
	redisCh := sub.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-redisCh:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cleanup := func() {
		_ = sub.Close()
	}

	return out, cleanup, nil
}

// PublishBoardEvent encodes ev as JSON and publishes it on the board channel.
func (ps *PubSub) PublishBoardEvent(ctx context.Context, ev domain.BoardEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis.PubSub.PublishBoardEvent: marshal: %w", err)
	}
	if err := ps.Publish(ctx, ps.channel, payload); err != nil {
		return fmt.Errorf("redis.PubSub.PublishBoardEvent: %w", err)
	}
	return nil
}

// SubscribeBoard streams raw board event payloads until ctx is done or the
// returned cleanup is called.
func (ps *PubSub) SubscribeBoard(ctx context.Context) (<-chan []byte, func(), error) {
	return ps.Subscribe(ctx, ps.channel)
}
