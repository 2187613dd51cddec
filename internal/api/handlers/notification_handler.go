package handlers

import (
	"job-portal/internal/domain"
	"job-portal/internal/services"
	"job-portal/pkg/logger"
	"net/http"

	"github.com/labstack/echo/v4"
)

// NotificationHandler exposes the dispatch operations to portal backends that
// run in this process's network. Results describe local delivery only.
type NotificationHandler struct {
	notifications *services.NotificationService
	registry      domain.Registry
	log           logger.Logger
}

type EventRequest struct {
	NotificationType domain.NotificationType `json:"notificationType"`
	Message          string                  `json:"message"`
	Data             map[string]interface{}  `json:"data"`
}

type SendToManyRequest struct {
	EventRequest
	UserIDs []string `json:"userIds"`
}

type BroadcastRequest struct {
	EventRequest
	ExcludeUserIDs []string `json:"excludeUserIds"`
}

type JobChangeRequest struct {
	JobTitle       string   `json:"jobTitle"`
	Message        string   `json:"message"`
	UserIDs        []string `json:"userIds"`
	ApplicantsOnly bool     `json:"applicantsOnly"`
}

type ApplicationStatusRequest struct {
	ApplicantID string                   `json:"applicantId"`
	JobID       string                   `json:"jobId"`
	Status      domain.ApplicationStatus `json:"status"`
}

type UserRegisteredRequest struct {
	Name string `json:"name"`
}

type DeliveredResponse struct {
	Delivered bool `json:"delivered"`
}

type ResultsResponse struct {
	Results []domain.DeliveryResult `json:"results"`
}

type ConnectionStatusResponse struct {
	UserID    string `json:"userId"`
	Connected bool   `json:"connected"`
}

func NewNotificationHandler(notifications *services.NotificationService, registry domain.Registry, log logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		registry:      registry,
		log:           log,
	}
}

// Register mounts every route on g, which is expected to be the /api/v1 group.
func (h *NotificationHandler) Register(g *echo.Group) {
	g.POST("/notifications/users/:userId", h.SendToUser)
	g.POST("/notifications/users", h.SendToMany)
	g.POST("/notifications/broadcast", h.Broadcast)
	g.POST("/jobs/:jobId/notifications", h.NotifyJobChange)
	g.POST("/applications/:applicationId/notifications", h.NotifyApplicationStatus)
	g.POST("/users/:userId/registered", h.NotifyUserRegistered)
	g.GET("/connections/:userId", h.ConnectionStatus)
}

// eventProblem returns a client-facing reason the event fields are unusable,
// or "" when they are fine. An empty type defaults to info.
func eventProblem(ev EventRequest) string {
	if ev.Message == "" {
		return "Message is required"
	}
	if ev.NotificationType != "" && !ev.NotificationType.Valid() {
		return "Unknown notification type"
	}
	return ""
}

func (h *NotificationHandler) badBody(c echo.Context, err error) error {
	h.log.Error("Failed to bind request", "path", c.Path(), "error", err)
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
}

func (h *NotificationHandler) SendToUser(c echo.Context) error {
	userID := c.Param("userId")

	var req EventRequest
	if err := c.Bind(&req); err != nil {
		return h.badBody(c, err)
	}
	if problem := eventProblem(req); problem != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": problem})
	}

	event := h.notifications.NewEvent(req.NotificationType, req.Message, req.Data)
	delivered := h.notifications.SendToUser(userID, event)

	h.log.Info("Notification sent to user", "user_id", userID, "notification_id", event.ID, "delivered", delivered)
	return c.JSON(http.StatusOK, DeliveredResponse{Delivered: delivered})
}

func (h *NotificationHandler) SendToMany(c echo.Context) error {
	var req SendToManyRequest
	if err := c.Bind(&req); err != nil {
		return h.badBody(c, err)
	}
	if problem := eventProblem(req.EventRequest); problem != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": problem})
	}
	if len(req.UserIDs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "userIds is required"})
	}

	event := h.notifications.NewEvent(req.NotificationType, req.Message, req.Data)
	results := h.notifications.SendToMany(req.UserIDs, event)
	return c.JSON(http.StatusOK, ResultsResponse{Results: results})
}

func (h *NotificationHandler) Broadcast(c echo.Context) error {
	var req BroadcastRequest
	if err := c.Bind(&req); err != nil {
		return h.badBody(c, err)
	}
	if problem := eventProblem(req.EventRequest); problem != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": problem})
	}

	event := h.notifications.NewEvent(req.NotificationType, req.Message, req.Data)
	results := h.notifications.Broadcast(event, req.ExcludeUserIDs)

	h.log.Info("Broadcast sent", "notification_id", event.ID, "recipients", len(results), "excluded", len(req.ExcludeUserIDs))
	return c.JSON(http.StatusOK, ResultsResponse{Results: nonNil(results)})
}

func (h *NotificationHandler) NotifyJobChange(c echo.Context) error {
	jobID := c.Param("jobId")

	var req JobChangeRequest
	if err := c.Bind(&req); err != nil {
		return h.badBody(c, err)
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message is required"})
	}

	ctx := c.Request().Context()
	if req.ApplicantsOnly {
		results, err := h.notifications.NotifyJobApplicants(ctx, jobID, req.JobTitle, req.Message)
		if err != nil {
			h.log.Error("Failed to notify job applicants", "job_id", jobID, "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to look up applicants"})
		}
		return c.JSON(http.StatusOK, ResultsResponse{Results: results})
	}

	results := h.notifications.NotifyJobChange(ctx, jobID, req.JobTitle, req.Message, req.UserIDs)
	return c.JSON(http.StatusOK, ResultsResponse{Results: nonNil(results)})
}

func (h *NotificationHandler) NotifyApplicationStatus(c echo.Context) error {
	applicationID := c.Param("applicationId")

	var req ApplicationStatusRequest
	if err := c.Bind(&req); err != nil {
		return h.badBody(c, err)
	}
	if req.ApplicantID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "applicantId is required"})
	}
	if req.Status == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "status is required"})
	}

	delivered := h.notifications.NotifyApplicationStatus(c.Request().Context(), req.ApplicantID, applicationID, req.JobID, req.Status)
	return c.JSON(http.StatusOK, DeliveredResponse{Delivered: delivered})
}

func (h *NotificationHandler) NotifyUserRegistered(c echo.Context) error {
	userID := c.Param("userId")

	var req UserRegisteredRequest
	if err := c.Bind(&req); err != nil {
		return h.badBody(c, err)
	}

	results, err := h.notifications.NotifyUserRegistered(c.Request().Context(), userID, req.Name)
	if err != nil {
		h.log.Error("Failed to notify admins of registration", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to look up admins"})
	}
	return c.JSON(http.StatusOK, ResultsResponse{Results: results})
}

func (h *NotificationHandler) ConnectionStatus(c echo.Context) error {
	userID := c.Param("userId")
	return c.JSON(http.StatusOK, ConnectionStatusResponse{
		UserID:    userID,
		Connected: h.registry.IsConnected(userID),
	})
}

func nonNil(results []domain.DeliveryResult) []domain.DeliveryResult {
	if results == nil {
		return []domain.DeliveryResult{}
	}
	return results
}
