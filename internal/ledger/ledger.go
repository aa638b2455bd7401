// Package ledger is the sole authority for creating and destroying bookings
// against an event's ticket capacity. Every path that mutates an event's
// booked counter or the booking collection goes through it, which is what
// keeps the invariant booked_tickets <= total_tickets true under concurrent
// reservations and cancellations.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventify/eventify/internal/model"
	"github.com/eventify/eventify/internal/notify"
	"github.com/eventify/eventify/internal/repository"
)

// ErrInvalidQuantity is returned when a reservation asks for a non-positive
// ticket count. Rejected before any storage round trip.
var ErrInvalidQuantity = errors.New("ticket quantity must be a positive integer")

// ErrInvalidCapacity is returned when a capacity adjustment asks for a
// negative total.
var ErrInvalidCapacity = errors.New("total tickets must be non-negative")

// ErrUnauthorized is returned when the requesting identity may not perform
// the operation. State is never mutated on an authorization failure.
var ErrUnauthorized = errors.New("not authorized")

// EventStore is the event persistence the ledger depends on.
type EventStore interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
	SetTotalTickets(ctx context.Context, id string, total int) (*model.Event, error)
	DeleteCascade(ctx context.Context, id string) (int, error)
}

// BookingStore is the booking persistence the ledger depends on. Reserve and
// Release must be atomic with respect to each other for the same event: the
// capacity check, the counter mutation and the booking row change commit as
// one step or not at all. The pgx implementation achieves this with a
// row-level lock on the event inside a transaction.
//
// Reserve returns repository.ErrNotFound for a missing event and
// repository.ErrCapacityExceeded when the tickets do not fit; Release returns
// repository.ErrNotFound for a missing booking, plus whether the counter
// decrement had to be floored at zero.
type BookingStore interface {
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	Reserve(ctx context.Context, eventID, userID string, tickets int) (*model.Booking, error)
	Release(ctx context.Context, bookingID string) (*model.Booking, bool, error)
}

// UserDirectory resolves account details for notification recipients.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Confirmer is the pluggable pre-commit step of a reservation. It runs after
// validation and before any state change; an error aborts the reservation.
// The direct-booking deployment uses DirectConfirmer, which always approves.
// A payment-gateway deployment would verify the charge here.
type Confirmer interface {
	Confirm(ctx context.Context, eventID, userID string, tickets int) error
}

// DirectConfirmer approves every reservation immediately (no payment step).
type DirectConfirmer struct{}

// Confirm implements Confirmer.
func (DirectConfirmer) Confirm(context.Context, string, string, int) error { return nil }

const notifyTimeout = 10 * time.Second

// Ledger enforces the capacity invariant.
type Ledger struct {
	events   EventStore
	bookings BookingStore
	users    UserDirectory
	confirm  Confirmer
	sink     notify.Sink
	logger   zerolog.Logger
}

// New constructs a Ledger. A nil confirmer defaults to direct booking.
func New(events EventStore, bookings BookingStore, users UserDirectory, confirm Confirmer, sink notify.Sink, logger zerolog.Logger) *Ledger {
	if confirm == nil {
		confirm = DirectConfirmer{}
	}
	return &Ledger{
		events:   events,
		bookings: bookings,
		users:    users,
		confirm:  confirm,
		sink:     sink,
		logger:   logger.With().Str("component", "ledger").Logger(),
	}
}

// Reserve books tickets for a user. The capacity check and counter increment
// happen as one atomic step in the store, so two concurrent reservations that
// would individually fit but jointly overflow cannot both succeed.
func (l *Ledger) Reserve(ctx context.Context, eventID, userID string, tickets int) (*model.Booking, error) {
	if tickets <= 0 {
		return nil, ErrInvalidQuantity
	}
	if err := l.confirm.Confirm(ctx, eventID, userID, tickets); err != nil {
		return nil, err
	}

	booking, err := l.bookings.Reserve(ctx, eventID, userID, tickets)
	if err != nil {
		return nil, err
	}

	l.logger.Info().
		Str("booking_id", booking.ID).
		Str("event_id", eventID).
		Str("user_id", userID).
		Int("tickets", tickets).
		Msg("tickets reserved")

	go l.notifyReservation(booking)
	return booking, nil
}

// Release cancels a booking and returns its tickets to the event's pool.
// The requester must be the booking's holder, an admin, or the organizer who
// owns the event. An unauthorized caller mutates nothing.
func (l *Ledger) Release(ctx context.Context, bookingID string, requester model.Identity) error {
	booking, err := l.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if !l.mayRelease(ctx, booking, requester) {
		return ErrUnauthorized
	}

	deleted, clamped, err := l.bookings.Release(ctx, bookingID)
	if err != nil {
		return err
	}
	if clamped {
		// The floor is a safety net; hitting it means the counter and the
		// booking rows disagreed before this call.
		l.logger.Warn().
			Str("booking_id", bookingID).
			Str("event_id", deleted.EventID).
			Int("tickets", deleted.Tickets).
			Msg("booked_tickets floored at zero during release; investigate data integrity")
	}

	l.logger.Info().
		Str("booking_id", bookingID).
		Str("event_id", deleted.EventID).
		Str("requester", requester.String()).
		Msg("booking released")

	go l.notifyCancellation(deleted)
	return nil
}

func (l *Ledger) mayRelease(ctx context.Context, booking *model.Booking, requester model.Identity) bool {
	if requester.ID == booking.UserID || requester.IsAdmin() {
		return true
	}
	// Event-scoped moderation: the owning organizer may cancel bookings on
	// their own event. The event can be missing if a cascade delete raced us;
	// then only holder/admin qualify.
	event, err := l.events.GetByID(ctx, booking.EventID)
	return err == nil && event.CreatedBy == requester.ID
}

// AdjustCapacity sets an event's total ticket count. Owner or admin only.
// The new total may be below the current booked counter; that leaves the
// event unable to accept reservations until bookings are released, but never
// cancels existing bookings.
func (l *Ledger) AdjustCapacity(ctx context.Context, eventID string, newTotal int, requester model.Identity) (*model.Event, error) {
	if newTotal < 0 {
		return nil, ErrInvalidCapacity
	}
	event, err := l.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin() && event.CreatedBy != requester.ID {
		return nil, ErrUnauthorized
	}

	updated, err := l.events.SetTotalTickets(ctx, eventID, newTotal)
	if err != nil {
		return nil, err
	}
	if updated.BookedTickets > updated.TotalTickets {
		l.logger.Warn().
			Str("event_id", eventID).
			Int("total", updated.TotalTickets).
			Int("booked", updated.BookedTickets).
			Msg("capacity shrunk below booked tickets; event closed to new reservations")
	}
	return updated, nil
}

// DeleteEvent removes an event and cascades deletion of every booking
// referencing it. Owner or admin only. Returns the number of cascaded
// bookings.
func (l *Ledger) DeleteEvent(ctx context.Context, eventID string, requester model.Identity) (int, error) {
	event, err := l.events.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if !requester.IsAdmin() && event.CreatedBy != requester.ID {
		return 0, ErrUnauthorized
	}

	cascaded, err := l.events.DeleteCascade(ctx, eventID)
	if err != nil {
		return 0, err
	}
	l.logger.Info().
		Str("event_id", eventID).
		Int("cascaded_bookings", cascaded).
		Str("requester", requester.String()).
		Msg("event deleted")
	return cascaded, nil
}

// notifyReservation emails the holder a confirmation and the event owner a
// new-booking notice. Runs detached from the request: a failure is logged and
// never rolls back the reservation.
func (l *Ledger) notifyReservation(booking *model.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	payload, holder, event, ok := l.bookingPayload(ctx, booking)
	if !ok {
		return
	}
	if err := l.sink.Notify(ctx, notify.KindBookingConfirmed, []string{holder.Email}, payload); err != nil {
		l.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("booking confirmation notification failed")
	}
	owner, err := l.users.GetByID(ctx, event.CreatedBy)
	if err != nil {
		l.logger.Warn().Err(err).Str("event_id", event.ID).Msg("lookup event owner for notification failed")
		return
	}
	if err := l.sink.Notify(ctx, notify.KindBookingNew, []string{owner.Email}, payload); err != nil {
		l.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("organizer notification failed")
	}
}

func (l *Ledger) notifyCancellation(booking *model.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	holder, err := l.users.GetByID(ctx, booking.UserID)
	if err != nil {
		l.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("lookup holder for notification failed")
		return
	}
	payload := notify.BookingPayload{
		BookingID:   booking.ID,
		Tickets:     booking.Tickets,
		TotalPrice:  booking.TotalPrice,
		HolderName:  holder.Username,
		HolderEmail: holder.Email,
	}
	// The event may already be deleted; its details are a nice-to-have here.
	if event, err := l.events.GetByID(ctx, booking.EventID); err == nil {
		payload.EventTitle = event.Title
		payload.EventDate = event.Date
		payload.EventLocation = event.Location
	}
	if err := l.sink.Notify(ctx, notify.KindBookingCancelled, []string{holder.Email}, payload); err != nil {
		l.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("cancellation notification failed")
	}
}

func (l *Ledger) bookingPayload(ctx context.Context, booking *model.Booking) (notify.BookingPayload, *model.User, *model.Event, bool) {
	holder, err := l.users.GetByID(ctx, booking.UserID)
	if err != nil {
		l.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("lookup holder for notification failed")
		return notify.BookingPayload{}, nil, nil, false
	}
	event, err := l.events.GetByID(ctx, booking.EventID)
	if err != nil {
		l.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("lookup event for notification failed")
		return notify.BookingPayload{}, nil, nil, false
	}
	return notify.BookingPayload{
		BookingID:     booking.ID,
		EventTitle:    event.Title,
		EventDate:     event.Date,
		EventLocation: event.Location,
		Tickets:       booking.Tickets,
		TotalPrice:    booking.TotalPrice,
		HolderName:    holder.Username,
		HolderEmail:   holder.Email,
	}, holder, event, true
}

// errors re-exported for call sites that only import the ledger.
var (
	ErrNotFound         = repository.ErrNotFound
	ErrCapacityExceeded = repository.ErrCapacityExceeded
)
