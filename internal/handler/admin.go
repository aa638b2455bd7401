package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventify/eventify/internal/admin"
	"github.com/eventify/eventify/internal/model"
	"github.com/eventify/eventify/internal/service"
)

// AdminHandler holds the admin dashboard and moderation endpoints. Event and
// booking moderation reuses the same services as ordinary users; the admin
// role carries the authority through the ledger's checks.
type AdminHandler struct {
	console *admin.Console
	events  *service.EventService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(console *admin.Console, events *service.EventService) *AdminHandler {
	return &AdminHandler{console: console, events: events}
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.console.DashboardStats(r.Context())
	if err != nil {
		writeServiceError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Events handles GET /api/admin/events.
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.console.EventsWithStats(r.Context())
	if err != nil {
		writeServiceError(w, err, http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []admin.EventStats{}
	}
	writeJSON(w, http.StatusOK, events)
}

// Bookings handles GET /api/admin/bookings.
func (h *AdminHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.console.AllBookings(r.Context())
	if err != nil {
		writeServiceError(w, err, http.StatusInternalServerError)
		return
	}
	if bookings == nil {
		bookings = []model.BookingDetail{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// EventBookings handles GET /api/admin/events/{id}/bookings.
func (h *AdminHandler) EventBookings(w http.ResponseWriter, r *http.Request) {
	report, err := h.console.EventBookings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ActiveUsers handles GET /api/admin/users/active.
func (h *AdminHandler) ActiveUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.console.ActiveUsers(r.Context())
	if err != nil {
		writeServiceError(w, err, http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []admin.ActiveUser{}
	}
	writeJSON(w, http.StatusOK, users)
}

// CancelBooking handles DELETE /api/admin/bookings/{id}: an administrative
// force-cancel through the same ledger release as self-service cancellation.
func (h *AdminHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	if err := h.events.CancelBooking(r.Context(), chi.URLParam(r, "id"), identity); err != nil {
		writeServiceError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "booking cancelled successfully"})
}

// OrganizerRequests handles GET /api/admin/organizer-requests.
func (h *AdminHandler) OrganizerRequests(w http.ResponseWriter, r *http.Request) {
	users, err := h.console.PendingOrganizerRequests(r.Context())
	if err != nil {
		writeServiceError(w, err, http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// ApproveOrganizer handles POST /api/admin/organizer-requests/{userId}/approve.
func (h *AdminHandler) ApproveOrganizer(w http.ResponseWriter, r *http.Request) {
	h.decideOrganizer(w, r, true)
}

// RejectOrganizer handles POST /api/admin/organizer-requests/{userId}/reject.
func (h *AdminHandler) RejectOrganizer(w http.ResponseWriter, r *http.Request) {
	h.decideOrganizer(w, r, false)
}

func (h *AdminHandler) decideOrganizer(w http.ResponseWriter, r *http.Request, approve bool) {
	user, err := h.console.DecideOrganizerRequest(r.Context(), chi.URLParam(r, "userId"), approve)
	if err != nil {
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}
	msg := "user " + user.Username + "'s request has been rejected"
	if approve {
		msg = "user " + user.Username + " has been approved as an organizer"
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": msg, "user": user})
}
