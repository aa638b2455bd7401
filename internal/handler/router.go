package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/eventify/eventify/internal/auth"
	"github.com/eventify/eventify/internal/model"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth    *AuthHandler
	Events  *EventHandler
	Booking *BookingHandler
	Users   *UserHandler
	Admin   *AdminHandler
	Tokens  *auth.TokenService
}

// NewRouter builds the application's chi router. webDir, when non-empty, is
// served statically at the root for the browser frontend.
func NewRouter(h Handlers, webDir string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(AccessLog(logger))
	r.Use(CORS)

	r.Get("/health", HealthCheck)

	authed := Authenticate(h.Tokens)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/forgot-password", h.Auth.ForgotPassword)
		r.Post("/reset-password", h.Auth.ResetPassword)
		r.With(authed).Post("/request-organizer", h.Auth.RequestOrganizer)
	})

	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", h.Events.List)
		r.Get("/{id}", h.Events.Get)
		r.With(authed).Post("/", h.Events.Create)
		r.With(authed).Put("/{id}", h.Events.Update)
		r.With(authed).Delete("/{id}", h.Events.Delete)
		r.With(authed).Get("/{id}/bookings", h.Events.Bookings)
	})

	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(authed)
		r.Post("/", h.Booking.Create)
		r.Get("/", h.Booking.List)
		r.Delete("/{id}", h.Booking.Cancel)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(authed)
		r.Get("/profile", h.Users.Profile)
		r.Put("/profile", h.Users.UpdateProfile)
		r.Put("/change-password", h.Users.ChangePassword)
		r.Get("/bookings", h.Users.Bookings)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authed)
		r.Use(RequireRole(model.RoleAdmin))
		r.Get("/stats", h.Admin.Stats)
		r.Get("/events", h.Admin.Events)
		r.Put("/events/{id}", h.Events.Update)
		r.Delete("/events/{id}", h.Events.Delete)
		r.Get("/events/{id}/bookings", h.Admin.EventBookings)
		r.Get("/bookings", h.Admin.Bookings)
		r.Delete("/bookings/{id}", h.Admin.CancelBooking)
		r.Get("/users/active", h.Admin.ActiveUsers)
		r.Get("/organizer-requests", h.Admin.OrganizerRequests)
		r.Post("/organizer-requests/{userId}/approve", h.Admin.ApproveOrganizer)
		r.Post("/organizer-requests/{userId}/reject", h.Admin.RejectOrganizer)
	})

	if webDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(webDir)))
	}

	return r
}
