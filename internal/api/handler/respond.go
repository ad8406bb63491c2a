package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/twokhq/realtime-core/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mapError translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConversationNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotParticipant),
		errors.Is(err, domain.ErrBlocked),
		errors.Is(err, domain.ErrMessagingNotAllowed),
		errors.Is(err, domain.ErrNotMessageSender):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidRecipient),
		errors.Is(err, domain.ErrInvalidNotificationType),
		errors.Is(err, domain.ErrInvalidPostID),
		errors.Is(err, domain.ErrInvalidInteraction),
		errors.Is(err, domain.ErrInvalidMailSubject),
		errors.Is(err, domain.ErrInvalidCommentJob),
		errors.Is(err, domain.ErrInvalidVisibility):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrQueueClosed):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
