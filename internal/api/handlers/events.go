package handlers

import (
	"net/http"
	"strconv"

	"github.com/sudmegaphone/backend/internal/security"
)

type EventHandler struct {
	svc *security.Service
}

func NewEventHandler(svc *security.Service) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := h.svc.List(r.Context(), r.URL.Query().Get("event_type"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events, "count": len(events)})
}
