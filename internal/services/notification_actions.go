package services

import (
	"context"
	"job-portal/internal/domain"
	"job-portal/pkg/logger"
)

// LoggingNotificationActions is the read/delete/clear backend used while there
// is no notification store: every action is logged and otherwise ignored.
// Swap in a persistent domain.NotificationActions to make the frames real.
type LoggingNotificationActions struct {
	log logger.Logger
}

func NewLoggingNotificationActions(log logger.Logger) *LoggingNotificationActions {
	return &LoggingNotificationActions{log: log}
}

func (a *LoggingNotificationActions) MarkRead(_ context.Context, userID, notificationID string) error {
	a.log.Info("Mark notification read", "user_id", userID, "notification_id", notificationID)
	return nil
}

func (a *LoggingNotificationActions) MarkAllRead(_ context.Context, userID string) error {
	a.log.Info("Mark all notifications read", "user_id", userID)
	return nil
}

func (a *LoggingNotificationActions) Delete(_ context.Context, userID, notificationID string) error {
	a.log.Info("Delete notification", "user_id", userID, "notification_id", notificationID)
	return nil
}

func (a *LoggingNotificationActions) ClearAll(_ context.Context, userID string) error {
	a.log.Info("Clear all notifications", "user_id", userID)
	return nil
}

// NoopPendingStore never has anything queued: offline notifications are
// dropped, not stored.
type NoopPendingStore struct{}

func (NoopPendingStore) Pending(context.Context, string) ([]domain.NotificationEvent, error) {
	return nil, nil
}
