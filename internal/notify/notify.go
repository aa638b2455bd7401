// Package notify delivers best-effort notifications for booking and account
// activity. Delivery is fire-and-forget: callers log failures and never let
// them affect the operation that triggered the notification.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Kind identifies a notification type.
type Kind string

const (
	KindBookingConfirmed  Kind = "booking.confirmed"
	KindBookingNew        Kind = "booking.new"
	KindBookingCancelled  Kind = "booking.cancelled"
	KindEventReminder     Kind = "event.reminder"
	KindPasswordReset     Kind = "password.reset"
	KindOrganizerApproved Kind = "organizer.approved"
	KindOrganizerRejected Kind = "organizer.rejected"
)

// Sink dispatches a notification to a set of recipients (email addresses).
// Implementations must be safe for concurrent use.
type Sink interface {
	Notify(ctx context.Context, kind Kind, recipients []string, payload any) error
}

// BookingPayload accompanies booking lifecycle notifications.
type BookingPayload struct {
	BookingID     string    `json:"booking_id"`
	EventTitle    string    `json:"event_title"`
	EventDate     time.Time `json:"event_date"`
	EventLocation string    `json:"event_location"`
	Tickets       int       `json:"tickets"`
	TotalPrice    float64   `json:"total_price"`
	HolderName    string    `json:"holder_name"`
	HolderEmail   string    `json:"holder_email"`
}

// ReminderPayload accompanies event-reminder notifications.
type ReminderPayload struct {
	EventTitle    string    `json:"event_title"`
	EventDate     time.Time `json:"event_date"`
	EventLocation string    `json:"event_location"`
	Tickets       int       `json:"tickets"`
}

// PasswordResetPayload accompanies password-reset notifications.
type PasswordResetPayload struct {
	Username string `json:"username"`
	ResetURL string `json:"reset_url"`
}

// OrganizerDecisionPayload accompanies promotion-decision notifications.
type OrganizerDecisionPayload struct {
	Username string `json:"username"`
}

// LogSink writes notifications to the log instead of delivering them.
// Used in development and as the default when no transport is configured.
type LogSink struct {
	Logger zerolog.Logger
}

// Notify implements Sink.
func (s LogSink) Notify(_ context.Context, kind Kind, recipients []string, payload any) error {
	s.Logger.Info().
		Str("kind", string(kind)).
		Strs("recipients", recipients).
		Interface("payload", payload).
		Msg("notification")
	return nil
}
