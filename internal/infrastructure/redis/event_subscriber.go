package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"job-portal/internal/domain"
	"job-portal/pkg/logger"

	"github.com/go-redis/redis/v8"
)

type RedisCommandSubscriber struct {
	client  *redis.Client
	channel string
	log     logger.Logger
}

func NewRedisCommandSubscriber(client *redis.Client, channel string, log logger.Logger) *RedisCommandSubscriber {
	if channel == "" {
		channel = DefaultCommandChannel
	}
	return &RedisCommandSubscriber{
		client:  client,
		channel: channel,
		log:     log,
	}
}

// SubscribeToCommands blocks until ctx is done. Bad payloads and handler
// failures are logged and skipped.
func (r *RedisCommandSubscriber) SubscribeToCommands(ctx context.Context, handler domain.CommandHandler) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	// Wait for the subscription to be confirmed so a dead server fails fast.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.channel, err)
	}

	ch := pubsub.Channel()

	r.log.Info("Subscribed to dispatch commands", "channel", r.channel)

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return errors.New("command subscription closed")
			}

			cmd, err := r.parseCommand(msg.Payload)
			if err != nil {
				r.log.Error("Failed to parse command", "payload", msg.Payload, "error", err)
				continue
			}

			if err := handler(ctx, cmd); err != nil {
				r.log.Error("Failed to handle command", "kind", cmd.Kind, "error", err)
			}

		case <-ctx.Done():
			r.log.Info("Command subscriber stopped")
			return ctx.Err()
		}
	}
}

func (r *RedisCommandSubscriber) parseCommand(payload string) (*domain.DispatchCommand, error) {
	var cmd domain.DispatchCommand
	if err := json.Unmarshal([]byte(payload), &cmd); err != nil {
		return nil, fmt.Errorf("invalid command payload: %w", err)
	}
	if cmd.Kind == "" {
		return nil, errors.New("command payload has no kind")
	}
	return &cmd, nil
}
