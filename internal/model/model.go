// Package model defines the core domain types for the Eventify platform.
package model

import "time"

// Event represents a ticketed activity created by an organizer.
type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Date          time.Time `json:"date"`
	Location      string    `json:"location"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	ImageURL      string    `json:"image_url"`
	TotalTickets  int       `json:"total_tickets"`
	BookedTickets int       `json:"booked_tickets"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Remaining returns the number of unsold tickets. May be negative after an
// owner shrinks capacity below current bookings; such an event simply cannot
// accept new reservations until tickets are released.
func (e *Event) Remaining() int {
	return e.TotalTickets - e.BookedTickets
}

// IsSoldOut returns true when no tickets remain.
func (e *Event) IsSoldOut() bool {
	return e.BookedTickets >= e.TotalTickets
}

// Booking is a holder's claim on a quantity of an event's tickets.
// TotalPrice is captured at booking time and never recomputed, even if the
// event's price changes later.
type Booking struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	Tickets    int       `json:"tickets"`
	TotalPrice float64   `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}

// BookingDetail is a booking joined with its event, as rendered on the
// user dashboard and admin views.
type BookingDetail struct {
	Booking
	EventTitle    string    `json:"event_title"`
	EventDate     time.Time `json:"event_date"`
	EventLocation string    `json:"event_location"`
	Username      string    `json:"username,omitempty"`
	UserEmail     string    `json:"user_email,omitempty"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title        string    `json:"title"`
	Date         time.Time `json:"date"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	ImageURL     string    `json:"image_url"`
	TotalTickets int       `json:"total_tickets"`
}

// UpdateEventRequest is the payload for editing an event. Nil fields are
// left unchanged.
type UpdateEventRequest struct {
	Title        *string    `json:"title"`
	Date         *time.Time `json:"date"`
	Location     *string    `json:"location"`
	Description  *string    `json:"description"`
	Price        *float64   `json:"price"`
	ImageURL     *string    `json:"image_url"`
	TotalTickets *int       `json:"total_tickets"`
}

// CreateBookingRequest is the payload for reserving tickets.
type CreateBookingRequest struct {
	EventID string `json:"event_id"`
	Tickets int    `json:"tickets"`
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
