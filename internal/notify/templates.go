package notify

import (
	"fmt"
	"time"
)

const dateLayout = "Mon, 02 Jan 2006 15:04 MST"

// Subject returns the email subject line for a notification.
func Subject(kind Kind, payload any) string {
	switch kind {
	case KindBookingConfirmed:
		if p, ok := payload.(BookingPayload); ok {
			return "Booking Confirmation for " + p.EventTitle
		}
		return "Booking Confirmation"
	case KindBookingNew:
		if p, ok := payload.(BookingPayload); ok {
			return "New Booking for Your Event: " + p.EventTitle
		}
		return "New Booking for Your Event"
	case KindBookingCancelled:
		if p, ok := payload.(BookingPayload); ok {
			return "Booking Cancelled: " + p.EventTitle
		}
		return "Booking Cancelled"
	case KindEventReminder:
		if p, ok := payload.(ReminderPayload); ok {
			return "Reminder: " + p.EventTitle + " starts soon"
		}
		return "Event Reminder"
	case KindPasswordReset:
		return "Password Reset Request"
	case KindOrganizerApproved:
		return "Your Organizer Request Was Approved"
	case KindOrganizerRejected:
		return "Your Organizer Request Was Rejected"
	}
	return "Eventify Notification"
}

// Body renders the HTML email body for a notification.
func Body(kind Kind, payload any) string {
	switch kind {
	case KindBookingConfirmed:
		if p, ok := payload.(BookingPayload); ok {
			return bookingConfirmedBody(p)
		}
	case KindBookingNew:
		if p, ok := payload.(BookingPayload); ok {
			return bookingNewBody(p)
		}
	case KindBookingCancelled:
		if p, ok := payload.(BookingPayload); ok {
			return bookingCancelledBody(p)
		}
	case KindEventReminder:
		if p, ok := payload.(ReminderPayload); ok {
			return reminderBody(p)
		}
	case KindPasswordReset:
		if p, ok := payload.(PasswordResetPayload); ok {
			return passwordResetBody(p)
		}
	case KindOrganizerApproved:
		if p, ok := payload.(OrganizerDecisionPayload); ok {
			return organizerDecisionBody(p, true)
		}
	case KindOrganizerRejected:
		if p, ok := payload.(OrganizerDecisionPayload); ok {
			return organizerDecisionBody(p, false)
		}
	}
	return "<p>You have a new notification from Eventify.</p>"
}

func bookingConfirmedBody(p BookingPayload) string {
	return fmt.Sprintf(`<h1>Booking Confirmed!</h1>
<p>Hi %s,</p>
<p>Thank you for your booking. Here are your details:</p>
<ul>
<li><strong>Event:</strong> %s</li>
<li><strong>Date:</strong> %s</li>
<li><strong>Location:</strong> %s</li>
<li><strong>Tickets Booked:</strong> %d</li>
<li><strong>Total Price:</strong> %.2f</li>
<li><strong>Booking ID:</strong> %s</li>
</ul>
<p>You can view your booking details in your dashboard.</p>
<p>Thanks,<br>The Eventify Team</p>`,
		p.HolderName, p.EventTitle, formatDate(p.EventDate), p.EventLocation,
		p.Tickets, p.TotalPrice, p.BookingID)
}

func bookingNewBody(p BookingPayload) string {
	return fmt.Sprintf(`<h1>New Booking!</h1>
<p>A new booking has been made for your event "%s".</p>
<ul>
<li><strong>Customer Name:</strong> %s</li>
<li><strong>Customer Email:</strong> %s</li>
<li><strong>Tickets Booked:</strong> %d</li>
</ul>
<p>You can view all bookings for this event in your dashboard.</p>`,
		p.EventTitle, p.HolderName, p.HolderEmail, p.Tickets)
}

func bookingCancelledBody(p BookingPayload) string {
	return fmt.Sprintf(`<h1>Booking Cancelled</h1>
<p>Hi %s,</p>
<p>Your booking for "%s" (%d tickets) has been cancelled.</p>
<p>Booking ID: %s</p>`,
		p.HolderName, p.EventTitle, p.Tickets, p.BookingID)
}

func reminderBody(p ReminderPayload) string {
	return fmt.Sprintf(`<h1>See You Soon!</h1>
<p>This is a reminder that "%s" starts on %s at %s.</p>
<p>You hold %d ticket(s). We look forward to seeing you there.</p>`,
		p.EventTitle, formatDate(p.EventDate), p.EventLocation, p.Tickets)
}

func passwordResetBody(p PasswordResetPayload) string {
	return fmt.Sprintf(`<h1>Password Reset</h1>
<p>Hi %s,</p>
<p>We received a request to reset your password. Click the link below to
choose a new one. The link expires in one hour.</p>
<p><a href="%s">Reset your password</a></p>
<p>If you did not request this, you can safely ignore this email.</p>`,
		p.Username, p.ResetURL)
}

func organizerDecisionBody(p OrganizerDecisionPayload, approved bool) string {
	if approved {
		return fmt.Sprintf(`<h1>Congratulations!</h1>
<p>Hi %s,</p>
<p>Your request to become an organizer has been approved. You can now create
and manage events from your dashboard.</p>`, p.Username)
	}
	return fmt.Sprintf(`<h1>Organizer Request Update</h1>
<p>Hi %s,</p>
<p>Your request to become an organizer was not approved at this time. You may
submit a new request later.</p>`, p.Username)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
