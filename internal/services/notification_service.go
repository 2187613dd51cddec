package services

import (
	"context"
	"fmt"
	"job-portal/internal/domain"
	"job-portal/pkg/logger"
	"job-portal/pkg/utils"
	"time"
)

// NotificationService turns portal events (job changes, application status
// changes, registrations) into notification events and hands them to the
// dispatcher. It never fails the caller because of a delivery problem.
type NotificationService struct {
	dispatcher   domain.Dispatcher
	users        domain.UserRepository
	applications domain.ApplicationRepository
	log          logger.Logger
	now          func() time.Time
}

func NewNotificationService(
	dispatcher domain.Dispatcher,
	users domain.UserRepository,
	applications domain.ApplicationRepository,
	log logger.Logger,
) *NotificationService {
	return &NotificationService{
		dispatcher:   dispatcher,
		users:        users,
		applications: applications,
		log:          log,
		now:          time.Now,
	}
}

// NewEvent stamps a fresh id and timestamp. An invalid type falls back to info.
func (s *NotificationService) NewEvent(notificationType domain.NotificationType, message string, data map[string]interface{}) domain.NotificationEvent {
	if !notificationType.Valid() {
		notificationType = domain.NotificationInfo
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	return domain.NotificationEvent{
		ID:        utils.GenerateID("notif"),
		Timestamp: s.now().UTC(),
		Type:      notificationType,
		Message:   message,
		Data:      data,
	}
}

func (s *NotificationService) SendToUser(userID string, event domain.NotificationEvent) bool {
	return s.dispatcher.SendToUser(userID, event)
}

func (s *NotificationService) SendToMany(userIDs []string, event domain.NotificationEvent) []domain.DeliveryResult {
	return s.dispatcher.SendToMany(userIDs, event)
}

func (s *NotificationService) Broadcast(event domain.NotificationEvent, excludeUserIDs []string) []domain.DeliveryResult {
	return s.dispatcher.Broadcast(event, excludeUserIDs)
}

// NotifyJobChange broadcasts to everyone connected when recipients is empty,
// otherwise targets exactly the recipients.
func (s *NotificationService) NotifyJobChange(_ context.Context, jobID, jobTitle, message string, recipients []string) []domain.DeliveryResult {
	event := s.NewEvent(domain.NotificationInfo, message, map[string]interface{}{
		"jobId":    jobID,
		"jobTitle": jobTitle,
	})

	if len(recipients) == 0 {
		s.log.Info("Broadcasting job change", "job_id", jobID, "notification_id", event.ID)
		return s.dispatcher.Broadcast(event, nil)
	}

	s.log.Info("Notifying job change recipients", "job_id", jobID, "recipients", len(recipients), "notification_id", event.ID)
	return s.dispatcher.SendToMany(recipients, event)
}

// NotifyJobApplicants targets only users who applied to the job. A job with no
// applicants notifies nobody.
func (s *NotificationService) NotifyJobApplicants(ctx context.Context, jobID, jobTitle, message string) ([]domain.DeliveryResult, error) {
	applicants, err := s.applications.ListApplicantIDs(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list applicants for job %s: %w", jobID, err)
	}
	if len(applicants) == 0 {
		s.log.Info("Job has no applicants to notify", "job_id", jobID)
		return []domain.DeliveryResult{}, nil
	}
	return s.NotifyJobChange(ctx, jobID, jobTitle, message, applicants), nil
}

func (s *NotificationService) NotifyApplicationStatus(_ context.Context, applicantID, applicationID, jobID string, status domain.ApplicationStatus) bool {
	message := fmt.Sprintf("Your application status has been updated to %s", status)
	event := s.NewEvent(status.NotificationType(), message, map[string]interface{}{
		"applicationId": applicationID,
		"jobId":         jobID,
		"status":        string(status),
	})

	delivered := s.dispatcher.SendToUser(applicantID, event)
	s.log.Info("Application status notification", "application_id", applicationID,
		"user_id", applicantID, "status", status, "delivered", delivered)
	return delivered
}

// NotifyUserRegistered tells every admin that a new account exists.
func (s *NotificationService) NotifyUserRegistered(ctx context.Context, userID, name string) ([]domain.DeliveryResult, error) {
	admins, err := s.users.ListUserIDsByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	if len(admins) == 0 {
		return []domain.DeliveryResult{}, nil
	}

	message := "A new user has registered"
	if name != "" {
		message = fmt.Sprintf("New user registered: %s", name)
	}
	event := s.NewEvent(domain.NotificationInfo, message, map[string]interface{}{
		"userId": userID,
		"name":   name,
	})
	return s.dispatcher.SendToMany(admins, event), nil
}
