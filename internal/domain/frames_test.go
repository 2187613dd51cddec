package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientFrame(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ClientFrame
	}{
		{name: "auth", raw: `{"type":"auth","token":"abc"}`, want: AuthFrame{Token: "abc"}},
		{name: "mark read", raw: `{"type":"mark_read","notificationId":"n1"}`, want: MarkReadFrame{NotificationID: "n1"}},
		{name: "mark all read", raw: `{"type":"mark_all_read"}`, want: MarkAllReadFrame{}},
		{name: "delete", raw: `{"type":"delete_notification","notificationId":"n2"}`, want: DeleteNotificationFrame{NotificationID: "n2"}},
		{name: "clear all", raw: `{"type":"clear_all_notifications"}`, want: ClearAllNotificationsFrame{}},
		{name: "unknown type", raw: `{"type":"typing","foo":1}`, want: UnknownFrame{Type: "typing"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClientFrame([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClientFrame_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `hello`},
		{name: "missing type", raw: `{"token":"abc"}`},
		{name: "non-string type", raw: `{"type":42}`},
		{name: "wrong field type", raw: `{"type":"auth","token":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseClientFrame([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestServerFrameEncoding(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		frame ServerFrame
		want  string
	}{
		{
			name:  "auth success",
			frame: AuthSuccessFrame{UserID: "u1", Message: "Authentication successful"},
			want:  `{"type":"auth_success","userId":"u1","message":"Authentication successful"}`,
		},
		{
			name:  "auth failure",
			frame: AuthFailureFrame{Message: "Authentication failed"},
			want:  `{"type":"auth_failure","message":"Authentication failed"}`,
		},
		{
			name: "notification",
			frame: NotificationFrame{Event: NotificationEvent{
				ID: "notif_1", Timestamp: ts, Type: NotificationSuccess,
				Message: "hired", Data: map[string]interface{}{"jobId": "j1"},
			}},
			want: `{"type":"notification","id":"notif_1","timestamp":"2026-01-02T03:04:05Z","notificationType":"success","message":"hired","data":{"jobId":"j1"}}`,
		},
		{
			name:  "notification without data",
			frame: NotificationFrame{Event: NotificationEvent{ID: "n", Timestamp: ts, Type: NotificationInfo}},
			want:  `{"type":"notification","id":"n","timestamp":"2026-01-02T03:04:05Z","notificationType":"info","message":"","data":{}}`,
		},
		{name: "ping", frame: PingFrame{}, want: `{"type":"ping"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeServerFrame(tt.frame)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
			assert.True(t, json.Valid(got))
		})
	}
}

func TestApplicationStatus_NotificationType(t *testing.T) {
	assert.Equal(t, NotificationSuccess, ApplicationAccepted.NotificationType())
	assert.Equal(t, NotificationSuccess, ApplicationShortlisted.NotificationType())
	assert.Equal(t, NotificationWarning, ApplicationRejected.NotificationType())
	assert.Equal(t, NotificationInfo, ApplicationReviewed.NotificationType())
	assert.Equal(t, NotificationInfo, ApplicationStatus("interview").NotificationType())
}

func TestDispatchCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     DispatchCommand
		wantErr bool
	}{
		{name: "user ok", cmd: DispatchCommand{Kind: CommandUser, UserIDs: []string{"u1"}}},
		{name: "user needs one id", cmd: DispatchCommand{Kind: CommandUser}, wantErr: true},
		{name: "many ok", cmd: DispatchCommand{Kind: CommandMany, UserIDs: []string{"a", "b"}}},
		{name: "many empty", cmd: DispatchCommand{Kind: CommandMany}, wantErr: true},
		{name: "broadcast", cmd: DispatchCommand{Kind: CommandBroadcast}},
		{name: "job without id", cmd: DispatchCommand{Kind: CommandJobChange}, wantErr: true},
		{name: "job ok", cmd: DispatchCommand{Kind: CommandJobChange, JobID: "j1"}},
		{
			name: "application ok",
			cmd:  DispatchCommand{Kind: CommandApplicationStatus, UserIDs: []string{"u"}, ApplicationID: "a", Status: ApplicationAccepted},
		},
		{
			name: "application custom status",
			cmd:  DispatchCommand{Kind: CommandApplicationStatus, UserIDs: []string{"u"}, ApplicationID: "a", Status: "interview"},
		},
		{name: "application missing status", cmd: DispatchCommand{Kind: CommandApplicationStatus, UserIDs: []string{"u"}, ApplicationID: "a"}, wantErr: true},
		{name: "registered ok", cmd: DispatchCommand{Kind: CommandUserRegistered, UserIDs: []string{"new"}}},
		{name: "bad notification type", cmd: DispatchCommand{Kind: CommandBroadcast, NotificationType: "loud"}, wantErr: true},
		{name: "unknown kind", cmd: DispatchCommand{Kind: "email"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
