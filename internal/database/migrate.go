package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup. Statements are idempotent so restarting the
// service against an existing database is safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user',
		organizer_request_status TEXT NOT NULL DEFAULT 'none',
		reset_token_hash TEXT,
		reset_token_expires TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		location TEXT NOT NULL,
		description TEXT NOT NULL,
		price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		image_url TEXT NOT NULL DEFAULT '',
		total_tickets INT NOT NULL CHECK (total_tickets >= 0),
		booked_tickets INT NOT NULL DEFAULT 0 CHECK (booked_tickets >= 0),
		created_by UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		event_id UUID NOT NULL REFERENCES events(id),
		user_id UUID NOT NULL REFERENCES users(id),
		tickets INT NOT NULL CHECK (tickets > 0),
		total_price NUMERIC(12,2) NOT NULL CHECK (total_price >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_event ON bookings(event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_date ON events(date)`,
}

// Migrate creates the tables and indexes the service needs.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
