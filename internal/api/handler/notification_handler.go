package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/twokhq/realtime-core/internal/api/middleware"
	"github.com/twokhq/realtime-core/internal/domain"
	"github.com/twokhq/realtime-core/internal/service"
)

// NotificationHandler accepts notification jobs from the main
// application and hands them to the delivery queue.
type NotificationHandler struct {
	svc    *service.NotificationService
	logger *zap.Logger
}

func NewNotificationHandler(svc *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/notifications
//
// @Summary     Enqueue a notification for delivery
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Param       body  body  domain.NotificationJob  true  "Notification job"
// @Success     202   {object}  map[string]string
// @Failure     422   {object}  map[string]string
// @Router      /api/v1/notifications [post]
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var job domain.NotificationJob
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.svc.Enqueue(job); err != nil {
		h.logger.Warn("enqueue notification failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// CreatePost handles POST /api/v1/events/post
//
// @Summary     Fan a new post out to the author's followers
// @Tags        events
// @Accept      json
// @Produce     json
// @Param       body  body  domain.NewPostJob  true  "New post event"
// @Success     202   {object}  map[string]string
// @Router      /api/v1/events/post [post]
func (h *NotificationHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var job domain.NewPostJob
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.svc.EnqueueNewPost(job); err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
