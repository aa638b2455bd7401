// Package repository implements all database access for Eventify using pgx.
package repository

import "errors"

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrCapacityExceeded is returned when a reservation would push an event's
// booked counter past its capacity. Handlers map it to a distinct status so
// clients can render "sold out" rather than a generic error.
var ErrCapacityExceeded = errors.New("not enough tickets available")

// ErrDuplicate is returned when a unique constraint (username, email) is hit.
var ErrDuplicate = errors.New("already exists")

// ErrInvalidTransition is returned when an organizer-request status change
// is not a legal step of the promotion workflow.
var ErrInvalidTransition = errors.New("invalid request-status transition")
