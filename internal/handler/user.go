package handler

import (
	"net/http"

	"github.com/eventify/eventify/internal/model"
	"github.com/eventify/eventify/internal/service"
)

// UserHandler holds the profile endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Profile handles GET /api/users/profile.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	user, err := h.users.Profile(r.Context(), identity.ID)
	if err != nil {
		writeServiceError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req model.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), identity.ID, req)
	if err != nil {
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ChangePassword handles PUT /api/users/change-password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req model.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.users.ChangePassword(r.Context(), identity.ID, req); err != nil {
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}

// Bookings handles GET /api/users/bookings (alias of GET /api/bookings kept
// for the frontend's account page).
func (h *UserHandler) Bookings(w http.ResponseWriter, r *http.Request) {
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
