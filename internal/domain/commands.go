package domain

import "fmt"

type CommandKind string

const (
	CommandUser              CommandKind = "user"
	CommandMany              CommandKind = "many"
	CommandBroadcast         CommandKind = "broadcast"
	CommandJobChange         CommandKind = "job"
	CommandApplicationStatus CommandKind = "application_status"
	CommandUserRegistered    CommandKind = "user_registered"
)

// DispatchCommand is what upstream producers in other processes publish on the
// relay channel.
type DispatchCommand struct {
	Kind             CommandKind            `json:"kind"`
	UserIDs          []string               `json:"userIds,omitempty"`
	ExcludeUserIDs   []string               `json:"excludeUserIds,omitempty"`
	NotificationType NotificationType       `json:"notificationType,omitempty"`
	Message          string                 `json:"message,omitempty"`
	Data             map[string]interface{} `json:"data,omitempty"`
	JobID            string                 `json:"jobId,omitempty"`
	JobTitle         string                 `json:"jobTitle,omitempty"`
	ApplicantsOnly   bool                   `json:"applicantsOnly,omitempty"`
	ApplicationID    string                 `json:"applicationId,omitempty"`
	Status           ApplicationStatus      `json:"status,omitempty"`
	UserName         string                 `json:"userName,omitempty"`
}

func (c *DispatchCommand) Validate() error {
	switch c.Kind {
	case CommandUser:
		if len(c.UserIDs) != 1 {
			return fmt.Errorf("%s command needs exactly one user id", c.Kind)
		}
	case CommandMany:
		if len(c.UserIDs) == 0 {
			return fmt.Errorf("%s command needs user ids", c.Kind)
		}
	case CommandBroadcast:
	case CommandJobChange:
		if c.JobID == "" {
			return fmt.Errorf("%s command needs a job id", c.Kind)
		}
	case CommandApplicationStatus:
		if len(c.UserIDs) != 1 || c.ApplicationID == "" || c.Status == "" {
			return fmt.Errorf("%s command needs applicant, application id and status", c.Kind)
		}
	case CommandUserRegistered:
		if len(c.UserIDs) != 1 {
			return fmt.Errorf("%s command needs the new user id", c.Kind)
		}
	default:
		return fmt.Errorf("unknown command kind %q", c.Kind)
	}
	if c.NotificationType != "" && !c.NotificationType.Valid() {
		return fmt.Errorf("unknown notification type %q", c.NotificationType)
	}
	return nil
}
