package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"job-portal/internal/domain"

	"github.com/go-redis/redis/v8"
)

const DefaultCommandChannel = "notification_commands"

// CommandPublisherImpl lets producers in other processes reach every instance's
// sockets. Delivery is fire-and-forget: instances that are not subscribed at
// publish time never see the command.
type CommandPublisherImpl struct {
	client  *redis.Client
	channel string
}

func NewCommandPublisher(client *redis.Client, channel string) *CommandPublisherImpl {
	if channel == "" {
		channel = DefaultCommandChannel
	}
	return &CommandPublisherImpl{client: client, channel: channel}
}

func (r *CommandPublisherImpl) PublishCommand(ctx context.Context, cmd *domain.DispatchCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encode dispatch command: %w", err)
	}

	return r.client.Publish(ctx, r.channel, payload).Err()
}
