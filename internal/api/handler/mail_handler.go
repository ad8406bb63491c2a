package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/twokhq/realtime-core/internal/api/middleware"
	"github.com/twokhq/realtime-core/internal/domain"
	"github.com/twokhq/realtime-core/internal/service"
)

// MailHandler accepts outbound mail jobs from the main application.
type MailHandler struct {
	svc    *service.MailService
	logger *zap.Logger
}

func NewMailHandler(svc *service.MailService, logger *zap.Logger) *MailHandler {
	return &MailHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/mail
//
// @Summary     Enqueue an outbound mail
// @Tags        mail
// @Accept      json
// @Produce     json
// @Param       body  body  domain.MailJob  true  "Mail job"
// @Success     202   {object}  map[string]string
// @Failure     422   {object}  map[string]string
// @Router      /api/v1/mail [post]
func (h *MailHandler) Create(w http.ResponseWriter, r *http.Request) {
	var job domain.MailJob
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.svc.Enqueue(job); err != nil {
		h.logger.Warn("enqueue mail failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
