package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)

type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
}

type Role string

const (
	RoleJobSeeker Role = "jobseeker"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
	RoleService   Role = "service"
)

// NotificationType is the severity shown to the user. It travels as
// "notificationType" inside a notification frame.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError:
		return true
	default:
		return false
	}
}

// NotificationEvent is never stored. It lives until it has been written to the
// target sockets or dropped.
type NotificationEvent struct {
	ID        string
	Timestamp time.Time
	Type      NotificationType
	Message   string
	Data      map[string]interface{}
}

type DeliveryResult struct {
	UserID    string `json:"userId"`
	Delivered bool   `json:"delivered"`
}

// ApplicationStatus is whatever status string the portal assigned. The named
// values below get a dedicated severity; any other value is still delivered.
type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationReviewed    ApplicationStatus = "reviewed"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
)

// NotificationType maps an application status to the severity the applicant sees.
func (s ApplicationStatus) NotificationType() NotificationType {
	switch s {
	case ApplicationAccepted, ApplicationShortlisted:
		return NotificationSuccess
	case ApplicationRejected:
		return NotificationWarning
	default:
		return NotificationInfo
	}
}
