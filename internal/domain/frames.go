package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type FrameType string

// Client -> server
const (
	FrameAuth                  FrameType = "auth"
	FrameMarkRead              FrameType = "mark_read"
	FrameMarkAllRead           FrameType = "mark_all_read"
	FrameDeleteNotification    FrameType = "delete_notification"
	FrameClearAllNotifications FrameType = "clear_all_notifications"
)

// Server -> client
const (
	FrameAuthSuccess  FrameType = "auth_success"
	FrameAuthFailure  FrameType = "auth_failure"
	FrameNotification FrameType = "notification"
	FramePing         FrameType = "ping"
)

// ClientFrame is one of AuthFrame, MarkReadFrame, MarkAllReadFrame,
// DeleteNotificationFrame, ClearAllNotificationsFrame or UnknownFrame.
type ClientFrame interface {
	clientFrame()
}

type AuthFrame struct {
	Token string `json:"token"`
}

type MarkReadFrame struct {
	NotificationID string `json:"notificationId"`
}

type MarkAllReadFrame struct{}

type DeleteNotificationFrame struct {
	NotificationID string `json:"notificationId"`
}

type ClearAllNotificationsFrame struct{}

// UnknownFrame carries any type string the server does not handle.
type UnknownFrame struct {
	Type string
}

func (AuthFrame) clientFrame()                  {}
func (MarkReadFrame) clientFrame()              {}
func (MarkAllReadFrame) clientFrame()           {}
func (DeleteNotificationFrame) clientFrame()    {}
func (ClearAllNotificationsFrame) clientFrame() {}
func (UnknownFrame) clientFrame()               {}

// ParseClientFrame decodes a raw client message. Only malformed JSON or a
// missing/non-string type is an error; unrecognised types yield UnknownFrame.
func ParseClientFrame(data []byte) (ClientFrame, error) {
	var envelope struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if envelope.Type == nil {
		return nil, fmt.Errorf("decode frame: missing type")
	}

	var (
		frame ClientFrame
		err   error
	)
	switch FrameType(*envelope.Type) {
	case FrameAuth:
		var f AuthFrame
		err = json.Unmarshal(data, &f)
		frame = f
	case FrameMarkRead:
		var f MarkReadFrame
		err = json.Unmarshal(data, &f)
		frame = f
	case FrameMarkAllRead:
		frame = MarkAllReadFrame{}
	case FrameDeleteNotification:
		var f DeleteNotificationFrame
		err = json.Unmarshal(data, &f)
		frame = f
	case FrameClearAllNotifications:
		frame = ClearAllNotificationsFrame{}
	default:
		frame = UnknownFrame{Type: *envelope.Type}
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s frame: %w", *envelope.Type, err)
	}
	return frame, nil
}

// ServerFrame is one of AuthSuccessFrame, AuthFailureFrame, NotificationFrame
// or PingFrame. Each marshals with its "type" discriminator.
type ServerFrame interface {
	json.Marshaler
	serverFrame()
}

type AuthSuccessFrame struct {
	UserID  string
	Message string
}

type AuthFailureFrame struct {
	Message string
}

type NotificationFrame struct {
	Event NotificationEvent
}

type PingFrame struct{}

func (AuthSuccessFrame) serverFrame()  {}
func (AuthFailureFrame) serverFrame()  {}
func (NotificationFrame) serverFrame() {}
func (PingFrame) serverFrame()         {}

func (f AuthSuccessFrame) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    FrameType `json:"type"`
		UserID  string    `json:"userId"`
		Message string    `json:"message"`
	}{FrameAuthSuccess, f.UserID, f.Message})
}

func (f AuthFailureFrame) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    FrameType `json:"type"`
		Message string    `json:"message"`
	}{FrameAuthFailure, f.Message})
}

func (f NotificationFrame) MarshalJSON() ([]byte, error) {
	data := f.Event.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	return json.Marshal(struct {
		Type             FrameType              `json:"type"`
		ID               string                 `json:"id"`
		Timestamp        time.Time              `json:"timestamp"`
		NotificationType NotificationType       `json:"notificationType"`
		Message          string                 `json:"message"`
		Data             map[string]interface{} `json:"data"`
	}{FrameNotification, f.Event.ID, f.Event.Timestamp, f.Event.Type, f.Event.Message, data})
}

func (PingFrame) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"ping"}`), nil
}

// EncodeServerFrame serialises a frame once so the same bytes can be written to
// every target connection.
func EncodeServerFrame(f ServerFrame) ([]byte, error) {
	return json.Marshal(f)
}
