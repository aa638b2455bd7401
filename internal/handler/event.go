package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventify/eventify/internal/model"
	"github.com/eventify/eventify/internal/service"
)

// EventHandler holds the event catalog and booking endpoints.
type EventHandler struct {
	events *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// List handles GET /api/events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		writeServiceError(w, err, http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// Get handles GET /api/events/{id}.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Create handles POST /api/events. Organizers only.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.events.Create(r.Context(), req, identity)
	if err != nil {
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// Update handles PUT /api/events/{id}. Owner or admin.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req model.UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.events.Update(r.Context(), chi.URLParam(r, "id"), req, identity)
	if err != nil {
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// Delete handles DELETE /api/events/{id}. Owner or admin; cascades bookings.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	cascaded, err := h.events.Delete(r.Context(), chi.URLParam(r, "id"), identity)
	if err != nil {
		writeServiceError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":            "event and all associated bookings removed",
		"cancelled_bookings": cascaded,
	})
}

// Bookings handles GET /api/events/{id}/bookings. Owner or admin.
func (h *EventHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	bookings, err := h.events.Bookings(r.Context(), chi.URLParam(r, "id"), identity)
	if err != nil {
		writeServiceError(w, err, http.StatusInternalServerError)
		return
	}
	if bookings == nil {
		bookings = []model.BookingDetail{}
	}
	writeJSON(w, http.StatusOK, bookings)
}
