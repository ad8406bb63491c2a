package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/domain"
	"github.com/twokhq/realtime-core/internal/service"
)

// EventHandler accepts comment and score events from the main
// application.
type EventHandler struct {
	comments *service.CommentService
	scores   *service.ScoreService
	logger   *zap.Logger
}

func NewEventHandler(comments *service.CommentService, scores *service.ScoreService, logger *zap.Logger) *EventHandler {
	return &EventHandler{comments: comments, scores: scores, logger: logger}
}

// CreateComment handles POST /api/v1/events/comment
//
// @Summary     Enqueue a comment event for realtime fan-out
// @Tags        events
// @Accept      json
// @Produce     json
// @Param       body  body  domain.CommentJob  true  "Comment event"
// @Success     202   {object}  map[string]string
// @Failure     422   {object}  map[string]string
// @Router      /api/v1/events/comment [post]
func (h *EventHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var job domain.CommentJob
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.comments.Enqueue(job); err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// CreateScore handles POST /api/v1/events/score
//
// @Summary     Enqueue a post interaction for score aggregation
// @Tags        events
// @Accept      json
// @Produce     json
// @Param       body  body  domain.ScoreJob  true  "Interaction event"
// @Success     202   {object}  map[string]string
// @Failure     422   {object}  map[string]string
// @Router      /api/v1/events/score [post]
func (h *EventHandler) CreateScore(w http.ResponseWriter, r *http.Request) {
	var job domain.ScoreJob
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.scores.Enqueue(job); err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
