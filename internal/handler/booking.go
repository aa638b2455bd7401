package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventify/eventify/internal/model"
	"github.com/eventify/eventify/internal/service"
)

// BookingHandler holds the self-service booking endpoints.
type BookingHandler struct {
	events *service.EventService
	users  *service.UserService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(events *service.EventService, users *service.UserService) *BookingHandler {
	return &BookingHandler{events: events, users: users}
}

// Create handles POST /api/bookings: reserve tickets for the caller.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req model.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	booking, err := h.events.Reserve(r.Context(), req, identity)
	if err != nil {
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "booking successful",
		"booking": booking,
	})
}

// List handles GET /api/bookings: the caller's bookings for the dashboard.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	bookings, err := h.users.Bookings(r.Context(), identity.ID)
	if err != nil {
		writeServiceError(w, err, http.StatusInternalServerError)
		return
	}
	if bookings == nil {
		bookings = []model.BookingDetail{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// Cancel handles DELETE /api/bookings/{id}. The ledger enforces that only the
// holder, an admin, or the event's organizer may cancel.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	if err := h.events.CancelBooking(r.Context(), chi.URLParam(r, "id"), identity); err != nil {
		writeServiceError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "booking cancelled successfully"})
}
