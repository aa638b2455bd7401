package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventify/eventify/internal/model"
)

// BookingRepository handles persistence for bookings, including the
// concurrency-safe reserve/release transactions against the event counters.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// Reserve creates a booking inside a serialised transaction.
//
// A naive read-then-write would let two transactions read the same counter
// snapshot and both conclude there is room, overbooking the event. Instead
// the event row is locked with SELECT ... FOR UPDATE: any concurrent
// reservation or release of the same event blocks until this transaction
// commits or rolls back, so the capacity check, the counter increment and the
// booking insert are one atomic step. Reservations against different events
// do not contend.
//
// The total price is computed from the price read under the lock, so a later
// price edit never changes what an existing holder paid.
func (r *BookingRepository) Reserve(ctx context.Context, eventID, userID string, tickets int) (*model.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var price float64
	var total, booked int
	err = tx.QueryRow(ctx,
		`SELECT price, total_tickets, booked_tickets
		 FROM events
		 WHERE id = $1
		 FOR UPDATE`,
		eventID,
	).Scan(&price, &total, &booked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return nil, err
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	if booked+tickets > total {
		err = ErrCapacityExceeded
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE events SET booked_tickets = booked_tickets + $2, updated_at = now()
		 WHERE id = $1`,
		eventID, tickets,
	)
	if err != nil {
		return nil, fmt.Errorf("increment booked_tickets: %w", err)
	}

	booking := &model.Booking{
		ID:         uuid.New().String(),
		EventID:    eventID,
		UserID:     userID,
		Tickets:    tickets,
		TotalPrice: price * float64(tickets),
		CreatedAt:  time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO bookings (id, event_id, user_id, tickets, total_price, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		booking.ID, booking.EventID, booking.UserID, booking.Tickets, booking.TotalPrice, booking.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return booking, nil
}

// Release deletes a booking and returns its tickets to the event's pool in
// one transaction, using the same event-row lock as Reserve. The counter is
// floored at zero; clamped reports whether the floor actually triggered,
// which indicates pre-existing data inconsistency rather than normal
// operation.
func (r *BookingRepository) Release(ctx context.Context, bookingID string) (booking *model.Booking, clamped bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var b model.Booking
	err = tx.QueryRow(ctx,
		`SELECT id, event_id, user_id, tickets, total_price, created_at
		 FROM bookings WHERE id = $1`,
		bookingID,
	).Scan(&b.ID, &b.EventID, &b.UserID, &b.Tickets, &b.TotalPrice, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return nil, false, err
		}
		return nil, false, fmt.Errorf("get booking: %w", err)
	}

	// Lock the event row so the decrement serialises with concurrent
	// reservations. The event may already be gone if a cascade delete won the
	// race; the booking would be gone too, so reaching this point with a live
	// booking implies a live event under normal operation.
	var booked int
	err = tx.QueryRow(ctx,
		`SELECT booked_tickets FROM events WHERE id = $1 FOR UPDATE`,
		b.EventID,
	).Scan(&booked)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("lock event row: %w", err)
	}
	if err == nil {
		clamped = booked < b.Tickets
		_, err = tx.Exec(ctx,
			`UPDATE events
			 SET booked_tickets = GREATEST(booked_tickets - $2, 0), updated_at = now()
			 WHERE id = $1`,
			b.EventID, b.Tickets,
		)
		if err != nil {
			return nil, false, fmt.Errorf("decrement booked_tickets: %w", err)
		}
	}
	err = nil

	tag, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, bookingID)
	if err != nil {
		return nil, false, fmt.Errorf("delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = ErrNotFound
		return nil, false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit transaction: %w", err)
	}
	return &b, clamped, nil
}

// GetByID returns a single booking or ErrNotFound.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	err := r.db.QueryRow(ctx,
		`SELECT id, event_id, user_id, tickets, total_price, created_at
		 FROM bookings WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.EventID, &b.UserID, &b.Tickets, &b.TotalPrice, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

// ListByUser returns the caller's bookings joined with event details, newest
// first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.id, b.event_id, b.user_id, b.tickets, b.total_price, b.created_at,
			e.title, e.date, e.location
		 FROM bookings b
		 JOIN events e ON e.id = b.event_id
		 WHERE b.user_id = $1
		 ORDER BY b.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	defer rows.Close()
	return scanBookingDetails(rows, false)
}

// ListByEvent returns every booking for an event joined with holder details,
// oldest first.
func (r *BookingRepository) ListByEvent(ctx context.Context, eventID string) ([]model.BookingDetail, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.id, b.event_id, b.user_id, b.tickets, b.total_price, b.created_at,
			e.title, e.date, e.location, u.username, u.email
		 FROM bookings b
		 JOIN events e ON e.id = b.event_id
		 JOIN users u ON u.id = b.user_id
		 WHERE b.event_id = $1
		 ORDER BY b.created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list event bookings: %w", err)
	}
	defer rows.Close()
	return scanBookingDetails(rows, true)
}

func scanBookingDetails(rows pgx.Rows, withUser bool) ([]model.BookingDetail, error) {
	var details []model.BookingDetail
	for rows.Next() {
		var d model.BookingDetail
		dest := []any{&d.ID, &d.EventID, &d.UserID, &d.Tickets, &d.TotalPrice, &d.CreatedAt,
			&d.EventTitle, &d.EventDate, &d.EventLocation}
		if withUser {
			dest = append(dest, &d.Username, &d.UserEmail)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
