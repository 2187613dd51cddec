package websocket

import (
	"context"
	"errors"
	"job-portal/internal/domain"
	"job-portal/pkg/logger"
)

const (
	authSuccessMessage = "Authentication successful"
	authFailureMessage = "Authentication failed"
)

type SessionDeps struct {
	Registry   domain.Registry
	Dispatcher domain.Dispatcher
	Verifier   domain.IdentityVerifier
	Pending    domain.PendingStore
	Actions    domain.NotificationActions
	Log        logger.Logger
}

// Session is the per-connection protocol state. It starts anonymous and is
// bound to a user by a successful auth frame. A session is driven by the
// connection's read goroutine only.
type Session struct {
	conn   domain.Connection
	deps   SessionDeps
	userID string
}

func NewSession(conn domain.Connection, deps SessionDeps) *Session {
	return &Session{conn: conn, deps: deps}
}

// UserID is empty until the session has authenticated.
func (s *Session) UserID() string {
	return s.userID
}

func (s *Session) HandleMessage(ctx context.Context, data []byte) {
	frame, err := domain.ParseClientFrame(data)
	if err != nil {
		s.deps.Log.Warn("Ignoring malformed frame", "connection_id", s.conn.ID(), "error", err)
		return
	}

	switch f := frame.(type) {
	case domain.AuthFrame:
		s.authenticate(ctx, f.Token)
	case domain.MarkReadFrame:
		s.withUser(domain.FrameMarkRead, func(userID string) error {
			return s.deps.Actions.MarkRead(ctx, userID, f.NotificationID)
		})
	case domain.MarkAllReadFrame:
		s.withUser(domain.FrameMarkAllRead, func(userID string) error {
			return s.deps.Actions.MarkAllRead(ctx, userID)
		})
	case domain.DeleteNotificationFrame:
		s.withUser(domain.FrameDeleteNotification, func(userID string) error {
			return s.deps.Actions.Delete(ctx, userID, f.NotificationID)
		})
	case domain.ClearAllNotificationsFrame:
		s.withUser(domain.FrameClearAllNotifications, func(userID string) error {
			return s.deps.Actions.ClearAll(ctx, userID)
		})
	case domain.UnknownFrame:
		s.deps.Log.Info("Unhandled frame type", "connection_id", s.conn.ID(), "user_id", s.userID, "type", f.Type)
	default:
		s.deps.Log.Warn("Unexpected frame", "connection_id", s.conn.ID(), "frame", frame)
	}
}

// Close drops the session from the registry and closes the transport. Safe to
// call more than once.
func (s *Session) Close() {
	if s.userID != "" {
		s.deps.Registry.Unregister(s.userID, s.conn)
	}
	if err := s.conn.Close(); err != nil {
		s.deps.Log.Debug("Failed to close connection", "connection_id", s.conn.ID(), "error", err)
	}
}

func (s *Session) authenticate(ctx context.Context, token string) {
	if token == "" {
		s.deps.Log.Warn("Authentication rejected, empty token", "connection_id", s.conn.ID())
		s.reply(domain.AuthFailureFrame{Message: authFailureMessage + ": token required"})
		return
	}

	user, err := s.deps.Verifier.VerifyToken(ctx, token)
	if err != nil {
		s.deps.Log.Warn("Authentication failed", "connection_id", s.conn.ID(), "error", err)
		s.reply(domain.AuthFailureFrame{Message: failureMessage(err)})
		return
	}

	if s.userID != "" && s.userID != user.ID {
		s.deps.Registry.Unregister(s.userID, s.conn)
	}
	s.userID = user.ID
	s.deps.Registry.Register(user.ID, s.conn)

	s.deps.Log.Info("Connection authenticated", "connection_id", s.conn.ID(), "user_id", user.ID)
	s.reply(domain.AuthSuccessFrame{UserID: user.ID, Message: authSuccessMessage})

	s.deliverPending(ctx, user.ID)
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return authFailureMessage + ": user not found"
	case errors.Is(err, domain.ErrInvalidToken):
		return authFailureMessage + ": invalid or expired token"
	default:
		return authFailureMessage
	}
}

func (s *Session) deliverPending(ctx context.Context, userID string) {
	events, err := s.deps.Pending.Pending(ctx, userID)
	if err != nil {
		s.deps.Log.Error("Failed to load pending notifications", "user_id", userID, "error", err)
		return
	}
	for _, event := range events {
		s.deps.Dispatcher.SendToUser(userID, event)
	}
}

func (s *Session) withUser(frameType domain.FrameType, action func(userID string) error) {
	if s.userID == "" {
		s.deps.Log.Info("Ignoring frame from unauthenticated connection", "connection_id", s.conn.ID(), "type", frameType)
		return
	}
	if err := action(s.userID); err != nil {
		s.deps.Log.Error("Notification action failed", "user_id", s.userID, "type", frameType, "error", err)
	}
}

func (s *Session) reply(frame domain.ServerFrame) {
	payload, err := domain.EncodeServerFrame(frame)
	if err != nil {
		s.deps.Log.Error("Failed to encode reply", "connection_id", s.conn.ID(), "error", err)
		return
	}
	if err := s.conn.Send(payload); err != nil {
		s.deps.Log.Error("Failed to send reply", "connection_id", s.conn.ID(), "error", err)
	}
}
