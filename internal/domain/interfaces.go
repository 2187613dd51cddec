package domain

import "context"

// Connection is a single live socket. Implementations must be safe for
// concurrent Send calls.
type Connection interface {
	ID() string
	Send(data []byte) error
	IsOpen() bool
	Close() error
}

// Registry tracks authenticated connections by user.
type Registry interface {
	Register(userID string, conn Connection)
	Unregister(userID string, conn Connection)
	IsConnected(userID string) bool
}

// Dispatcher delivers events to connected users. Delivery is best effort and
// at most once; offline users are reported as not delivered.
type Dispatcher interface {
	SendToUser(userID string, event NotificationEvent) bool
	SendToMany(userIDs []string, event NotificationEvent) []DeliveryResult
	Broadcast(event NotificationEvent, excludeUserIDs []string) []DeliveryResult
}

// IdentityVerifier resolves a bearer token to an existing user.
type IdentityVerifier interface {
	VerifyToken(ctx context.Context, token string) (*User, error)
}

// PendingStore yields notifications queued for a user while they were offline.
type PendingStore interface {
	Pending(ctx context.Context, userID string) ([]NotificationEvent, error)
}

// NotificationActions backs the read/delete/clear client frames.
type NotificationActions interface {
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, notificationID string) error
	ClearAll(ctx context.Context, userID string) error
}

// Repository interfaces
type UserRepository interface {
	GetUser(ctx context.Context, userID string) (*User, error)
	ListUserIDsByRole(ctx context.Context, role Role) ([]string, error)
}

type ApplicationRepository interface {
	ListApplicantIDs(ctx context.Context, jobID string) ([]string, error)
}

// Event interfaces
type CommandPublisher interface {
	PublishCommand(ctx context.Context, cmd *DispatchCommand) error
}

type CommandSubscriber interface {
	SubscribeToCommands(ctx context.Context, handler CommandHandler) error
}

type CommandHandler func(ctx context.Context, cmd *DispatchCommand) error
