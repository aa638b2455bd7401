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

const eventColumns = `id, title, date, location, description, price, image_url,
	total_tickets, booked_tickets, created_by, created_at, updated_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Date, &e.Location, &e.Description, &e.Price,
		&e.ImageURL, &e.TotalTickets, &e.BookedTickets, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}

// Create inserts a new event owned by creatorID.
func (r *EventRepository) Create(ctx context.Context, req model.CreateEventRequest, creatorID string) (*model.Event, error) {
	now := time.Now().UTC()
	event := &model.Event{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Date:         req.Date,
		Location:     req.Location,
		Description:  req.Description,
		Price:        req.Price,
		ImageURL:     req.ImageURL,
		TotalTickets: req.TotalTickets,
		CreatedBy:    creatorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, title, date, location, description, price, image_url,
			total_tickets, booked_tickets, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10, $10)`,
		event.ID, event.Title, event.Date, event.Location, event.Description,
		event.Price, event.ImageURL, event.TotalTickets, event.CreatedBy, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// List returns all events ordered by date ascending.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY date ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

// ListStartingBetween returns events whose start date falls in [from, to).
// Used by the reminder scheduler.
func (r *EventRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE date >= $1 AND date < $2`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Update applies the non-nil metadata fields of req. Capacity changes go
// through SetTotalTickets so that all writers of the ticket counters stay in
// one place.
func (r *EventRepository) Update(ctx context.Context, id string, req model.UpdateEventRequest) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE events SET
			title = COALESCE($2, title),
			date = COALESCE($3, date),
			location = COALESCE($4, location),
			description = COALESCE($5, description),
			price = COALESCE($6, price),
			image_url = COALESCE($7, image_url),
			updated_at = now()
		 WHERE id = $1
		 RETURNING `+eventColumns,
		id, req.Title, req.Date, req.Location, req.Description, req.Price, req.ImageURL,
	)
	return scanEvent(row)
}

// SetTotalTickets sets an event's capacity. The new value may be below the
// current booked counter: the event then rejects new reservations until
// enough bookings are released, but existing bookings stay valid.
func (r *EventRepository) SetTotalTickets(ctx context.Context, id string, total int) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE events SET total_tickets = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+eventColumns,
		id, total,
	)
	return scanEvent(row)
}

// DeleteCascade removes an event and every booking referencing it in one
// transaction, and returns the number of bookings removed.
func (r *EventRepository) DeleteCascade(ctx context.Context, id string) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `DELETE FROM bookings WHERE event_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete event bookings: %w", err)
	}
	cascaded := int(tag.RowsAffected())

	tag, err = tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = ErrNotFound
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return cascaded, nil
}
