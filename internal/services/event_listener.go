package services

import (
	"context"
	"fmt"
	"job-portal/internal/domain"
	"job-portal/pkg/logger"
)

// EventListener applies dispatch commands published by producers in other
// processes to this instance's connections.
type EventListener struct {
	notifications *NotificationService
	log           logger.Logger
}

func NewEventListener(notifications *NotificationService, log logger.Logger) *EventListener {
	return &EventListener{
		notifications: notifications,
		log:           log,
	}
}

func (el *EventListener) Start(ctx context.Context, subscriber domain.CommandSubscriber) error {
	el.log.Info("Starting event listener")
	return subscriber.SubscribeToCommands(ctx, el.HandleCommand)
}

func (el *EventListener) HandleCommand(ctx context.Context, cmd *domain.DispatchCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid dispatch command: %w", err)
	}

	el.log.Info("Handling dispatch command", "kind", cmd.Kind)
	n := el.notifications

	switch cmd.Kind {
	case domain.CommandUser:
		n.SendToUser(cmd.UserIDs[0], n.NewEvent(cmd.NotificationType, cmd.Message, cmd.Data))
	case domain.CommandMany:
		n.SendToMany(cmd.UserIDs, n.NewEvent(cmd.NotificationType, cmd.Message, cmd.Data))
	case domain.CommandBroadcast:
		n.Broadcast(n.NewEvent(cmd.NotificationType, cmd.Message, cmd.Data), cmd.ExcludeUserIDs)
	case domain.CommandJobChange:
		if cmd.ApplicantsOnly {
			if _, err := n.NotifyJobApplicants(ctx, cmd.JobID, cmd.JobTitle, cmd.Message); err != nil {
				return err
			}
			return nil
		}
		n.NotifyJobChange(ctx, cmd.JobID, cmd.JobTitle, cmd.Message, cmd.UserIDs)
	case domain.CommandApplicationStatus:
		n.NotifyApplicationStatus(ctx, cmd.UserIDs[0], cmd.ApplicationID, cmd.JobID, cmd.Status)
	case domain.CommandUserRegistered:
		if _, err := n.NotifyUserRegistered(ctx, cmd.UserIDs[0], cmd.UserName); err != nil {
			return err
		}
	}
	return nil
}
