package handler

import (
	"net/http"

	"github.com/twokhq/realtime-core/internal/service"
)

// QueueHandler serves a human-readable JSON queue snapshot.
// Raw Prometheus metrics (counters, gauges) are available at /metrics
// via promhttp.Handler and are separate from this endpoint.
type QueueHandler struct {
	notifications *service.NotificationService
	comments      *service.CommentService
	scores        *service.ScoreService
	mail          *service.MailService
}

func NewQueueHandler(
	notifications *service.NotificationService,
	comments *service.CommentService,
	scores *service.ScoreService,
	mail *service.MailService,
) *QueueHandler {
	return &QueueHandler{notifications: notifications, comments: comments, scores: scores, mail: mail}
}

// GetDepths handles GET /api/v1/queues
//
// @Summary  Real-time queue depth snapshot
// @Tags     metrics
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/queues [get]
func (h *QueueHandler) GetDepths(w http.ResponseWriter, r *http.Request) {
	notifications := h.notifications.Depth()
	comments := h.comments.Depth()
	scores := h.scores.Depth()
	mail := h.mail.Depth()

	respondJSON(w, http.StatusOK, map[string]any{
		"queue_depth": map[string]int{
			"notification": notifications,
			"comment":      comments,
			"score":        scores,
			"mail":         mail,
			"total":        notifications + comments + scores + mail,
		},
	})
}
