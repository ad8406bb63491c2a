package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/twokhq/realtime-core/internal/registry"
)

// PresenceHandler exposes the registry's online state to the main
// application (e.g. for rendering online badges on page load).
type PresenceHandler struct {
	reg *registry.Registry
}

func NewPresenceHandler(reg *registry.Registry) *PresenceHandler {
	return &PresenceHandler{reg: reg}
}

// List handles GET /api/v1/presence
//
// @Summary  List all currently online user ids
// @Tags     presence
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/presence [get]
func (h *PresenceHandler) List(w http.ResponseWriter, r *http.Request) {
	ids := h.reg.OnlineUserIDs()
	respondJSON(w, http.StatusOK, map[string]any{
		"online": ids,
		"count":  len(ids),
	})
}

// Get handles GET /api/v1/presence/{userID}
//
// @Summary  Check whether one user is online
// @Tags     presence
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/presence/{userID} [get]
func (h *PresenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	respondJSON(w, http.StatusOK, map[string]any{
		"userId": userID,
		"online": h.reg.IsOnline(userID),
	})
}
