// Package admin implements the administrative console: read-only reporting
// and aggregation queries plus organizer-role moderation. Event and booking
// moderation reuses the same ledger operations as ordinary users, with admin
// authority.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/eventify/eventify/internal/model"
	"github.com/eventify/eventify/internal/notify"
	"github.com/eventify/eventify/internal/repository"
)

// Stats summarises the platform for the dashboard.
type Stats struct {
	TotalEvents   int     `json:"total_events"`
	TotalBookings int     `json:"total_bookings"`
	TotalUsers    int     `json:"total_users"`
	ActiveUsers   int     `json:"active_users"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// EventStats is an event with its booking aggregates.
type EventStats struct {
	model.Event
	Organizer        string `json:"organizer"`
	BookingCount     int    `json:"booking_count"`
	AvailableTickets int    `json:"available_tickets"`
}

// ActiveUser is a user with at least one booking.
type ActiveUser struct {
	UserID       string  `json:"user_id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	BookingCount int     `json:"booking_count"`
	TotalSpent   float64 `json:"total_spent"`
}

// Console serves the admin dashboard and moderation endpoints.
type Console struct {
	db       *pgxpool.Pool
	users    *repository.UserRepository
	bookings *repository.BookingRepository
	sink     notify.Sink
	logger   zerolog.Logger
}

// NewConsole constructs a Console.
func NewConsole(
	db *pgxpool.Pool,
	users *repository.UserRepository,
	bookings *repository.BookingRepository,
	sink notify.Sink,
	logger zerolog.Logger,
) *Console {
	return &Console{
		db:       db,
		users:    users,
		bookings: bookings,
		sink:     sink,
		logger:   logger.With().Str("component", "admin").Logger(),
	}
}

// DashboardStats returns the platform totals.
func (c *Console) DashboardStats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := c.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM bookings),
			(SELECT COUNT(*) FROM users WHERE role = 'user'),
			(SELECT COUNT(DISTINCT user_id) FROM bookings),
			COALESCE((SELECT SUM(total_price) FROM bookings), 0)`,
	).Scan(&s.TotalEvents, &s.TotalBookings, &s.TotalUsers, &s.ActiveUsers, &s.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &s, nil
}

// EventsWithStats returns every event with its booking aggregates, one query
// instead of N+1.
func (c *Console) EventsWithStats(ctx context.Context) ([]EventStats, error) {
	rows, err := c.db.Query(ctx, `
		SELECT e.id, e.title, e.date, e.location, e.description, e.price, e.image_url,
			e.total_tickets, e.booked_tickets, e.created_by, e.created_at, e.updated_at,
			u.username,
			COUNT(b.id),
			e.total_tickets - e.booked_tickets
		FROM events e
		JOIN users u ON u.id = e.created_by
		LEFT JOIN bookings b ON b.event_id = e.id
		GROUP BY e.id, u.username
		ORDER BY e.date ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("events with stats: %w", err)
	}
	defer rows.Close()

	var stats []EventStats
	for rows.Next() {
		var s EventStats
		err := rows.Scan(&s.ID, &s.Title, &s.Date, &s.Location, &s.Description, &s.Price,
			&s.ImageURL, &s.TotalTickets, &s.BookedTickets, &s.CreatedBy, &s.CreatedAt,
			&s.UpdatedAt, &s.Organizer, &s.BookingCount, &s.AvailableTickets)
		if err != nil {
			return nil, fmt.Errorf("scan event stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// AllBookings returns every booking with holder and event details.
func (c *Console) AllBookings(ctx context.Context) ([]model.BookingDetail, error) {
	rows, err := c.db.Query(ctx, `
		SELECT b.id, b.event_id, b.user_id, b.tickets, b.total_price, b.created_at,
			e.title, e.date, e.location, u.username, u.email
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		JOIN users u ON u.id = b.user_id
		ORDER BY b.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("all bookings: %w", err)
	}
	defer rows.Close()

	var details []model.BookingDetail
	for rows.Next() {
		var d model.BookingDetail
		err := rows.Scan(&d.ID, &d.EventID, &d.UserID, &d.Tickets, &d.TotalPrice, &d.CreatedAt,
			&d.EventTitle, &d.EventDate, &d.EventLocation, &d.Username, &d.UserEmail)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// EventBookings returns the bookings for one event with summary totals.
type EventBookingsReport struct {
	Bookings      []model.BookingDetail `json:"bookings"`
	TotalTickets  int                   `json:"total_tickets"`
	TotalBookings int                   `json:"total_bookings"`
}

// EventBookings builds the per-event booking report.
func (c *Console) EventBookings(ctx context.Context, eventID string) (*EventBookingsReport, error) {
	bookings, err := c.bookings.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	report := &EventBookingsReport{Bookings: bookings, TotalBookings: len(bookings)}
	for _, b := range bookings {
		report.TotalTickets += b.Tickets
	}
	return report, nil
}

// ActiveUsers returns every user with at least one booking, with spend
// aggregates.
func (c *Console) ActiveUsers(ctx context.Context) ([]ActiveUser, error) {
	rows, err := c.db.Query(ctx, `
		SELECT u.id, u.username, u.email, COUNT(b.id), COALESCE(SUM(b.total_price), 0)
		FROM users u
		JOIN bookings b ON b.user_id = u.id
		GROUP BY u.id
		ORDER BY COUNT(b.id) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("active users: %w", err)
	}
	defer rows.Close()

	var users []ActiveUser
	for rows.Next() {
		var u ActiveUser
		if err := rows.Scan(&u.UserID, &u.Username, &u.Email, &u.BookingCount, &u.TotalSpent); err != nil {
			return nil, fmt.Errorf("scan active user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// PendingOrganizerRequests lists accounts awaiting a promotion decision.
func (c *Console) PendingOrganizerRequests(ctx context.Context) ([]model.User, error) {
	return c.users.ListPendingOrganizerRequests(ctx)
}

// DecideOrganizerRequest approves or rejects a pending promotion request and
// notifies the user, best-effort.
func (c *Console) DecideOrganizerRequest(ctx context.Context, userID string, approve bool) (*model.User, error) {
	user, err := c.users.DecideOrganizerRequest(ctx, userID, approve)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, fmt.Errorf("user has no pending organizer request")
		}
		return nil, err
	}

	kind := notify.KindOrganizerRejected
	if approve {
		kind = notify.KindOrganizerApproved
	}
	go func() {
		nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		payload := notify.OrganizerDecisionPayload{Username: user.Username}
		if err := c.sink.Notify(nctx, kind, []string{user.Email}, payload); err != nil {
			c.logger.Warn().Err(err).Str("user_id", user.ID).Msg("organizer decision notification failed")
		}
	}()

	c.logger.Info().Str("user_id", user.ID).Bool("approved", approve).Msg("organizer request decided")
	return user, nil
}
