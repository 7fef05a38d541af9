package handlers

import (
	"net/http"

	"invoice-backend/internal/events"
)

type EventsHandler struct {
	Hub *events.Hub
}

func NewEventsHandler(hub *events.Hub) *EventsHandler {
	return &EventsHandler{Hub: hub}
}

// Stream upgrades GET /ws and streams the caller's invoice events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	h.Hub.Serve(w, r, id)
}
