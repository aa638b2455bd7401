package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var sampleBooking = BookingPayload{
	BookingID:     "bk-42",
	EventTitle:    "Go Conference",
	EventDate:     time.Date(2026, 9, 12, 18, 30, 0, 0, time.UTC),
	EventLocation: "City Hall",
	Tickets:       3,
	TotalPrice:    75.50,
	HolderName:    "alice",
	HolderEmail:   "alice@example.com",
}

func TestSubject(t *testing.T) {
	tests := []struct {
		kind    Kind
		payload any
		want    string
	}{
		{KindBookingConfirmed, sampleBooking, "Booking Confirmation for Go Conference"},
		{KindBookingNew, sampleBooking, "New Booking for Your Event: Go Conference"},
		{KindBookingCancelled, sampleBooking, "Booking Cancelled: Go Conference"},
		{KindEventReminder, ReminderPayload{EventTitle: "Go Conference"}, "Reminder: Go Conference starts soon"},
		{KindPasswordReset, PasswordResetPayload{}, "Password Reset Request"},
		{KindOrganizerApproved, OrganizerDecisionPayload{}, "Your Organizer Request Was Approved"},
		{KindOrganizerRejected, OrganizerDecisionPayload{}, "Your Organizer Request Was Rejected"},
		{Kind("unknown"), nil, "Eventify Notification"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Subject(tt.kind, tt.payload), string(tt.kind))
	}
	// Subject degrades gracefully when the payload type is wrong.
	assert.Equal(t, "Booking Confirmation", Subject(KindBookingConfirmed, nil))
}

func TestBodyBookingConfirmed(t *testing.T) {
	body := Body(KindBookingConfirmed, sampleBooking)
	assert.Contains(t, body, "Booking Confirmed!")
	assert.Contains(t, body, "Hi alice,")
	assert.Contains(t, body, "Go Conference")
	assert.Contains(t, body, "City Hall")
	assert.Contains(t, body, "Tickets Booked:</strong> 3")
	assert.Contains(t, body, "75.50")
	assert.Contains(t, body, "bk-42")
	assert.Contains(t, body, "Sat, 12 Sep 2026 18:30 UTC")
}

func TestBodyBookingNew(t *testing.T) {
	body := Body(KindBookingNew, sampleBooking)
	assert.Contains(t, body, "New Booking!")
	assert.Contains(t, body, `"Go Conference"`)
	assert.Contains(t, body, "alice@example.com")
}

func TestBodyBookingCancelled(t *testing.T) {
	body := Body(KindBookingCancelled, sampleBooking)
	assert.Contains(t, body, "Booking Cancelled")
	assert.Contains(t, body, "3 tickets")
	assert.Contains(t, body, "bk-42")
}

func TestBodyReminder(t *testing.T) {
	body := Body(KindEventReminder, ReminderPayload{
		EventTitle:    "Go Conference",
		EventDate:     sampleBooking.EventDate,
		EventLocation: "City Hall",
		Tickets:       2,
	})
	assert.Contains(t, body, "See You Soon!")
	assert.Contains(t, body, "2 ticket(s)")
	assert.Contains(t, body, "City Hall")
}

func TestBodyPasswordReset(t *testing.T) {
	body := Body(KindPasswordReset, PasswordResetPayload{
		Username: "alice",
		ResetURL: "http://localhost:8080/reset-password.html?token=abc",
	})
	assert.Contains(t, body, "Hi alice,")
	assert.Contains(t, body, `href="http://localhost:8080/reset-password.html?token=abc"`)
	assert.Contains(t, body, "expires in one hour")
}

func TestBodyOrganizerDecision(t *testing.T) {
	approved := Body(KindOrganizerApproved, OrganizerDecisionPayload{Username: "bob"})
	assert.Contains(t, approved, "Congratulations!")
	assert.Contains(t, approved, "Hi bob,")

	rejected := Body(KindOrganizerRejected, OrganizerDecisionPayload{Username: "bob"})
	assert.Contains(t, rejected, "not approved")
}

func TestBodyUnknownKindFallsBack(t *testing.T) {
	assert.Equal(t, "<p>You have a new notification from Eventify.</p>", Body(Kind("unknown"), nil))
	// Wrong payload type also falls back.
	assert.Equal(t, "<p>You have a new notification from Eventify.</p>", Body(KindBookingConfirmed, "nope"))
}
