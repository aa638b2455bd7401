package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/eventify/eventify/internal/ledger"
	"github.com/eventify/eventify/internal/model"
	"github.com/eventify/eventify/internal/repository"
)

const maxCapacity = 100_000

// EventService orchestrates event catalog operations. All mutations of the
// ticket counters are delegated to the ledger.
type EventService struct {
	events   *repository.EventRepository
	bookings *repository.BookingRepository
	ledger   *ledger.Ledger
}

// NewEventService constructs an EventService.
func NewEventService(
	events *repository.EventRepository,
	bookings *repository.BookingRepository,
	ldg *ledger.Ledger,
) *EventService {
	return &EventService{events: events, bookings: bookings, ledger: ldg}
}

// Create validates the request and inserts a new event. Only organizers may
// create events.
func (s *EventService) Create(ctx context.Context, req model.CreateEventRequest, requester model.Identity) (*model.Event, error) {
	if requester.Role != model.RoleOrganizer {
		return nil, ledger.ErrUnauthorized
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	if req.Title == "" {
		return nil, fmt.Errorf("event title is required")
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("event date is required")
	}
	if req.Location == "" {
		return nil, fmt.Errorf("event location is required")
	}
	if req.ImageURL == "" {
		return nil, fmt.Errorf("event image URL is required")
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	if req.TotalTickets < 0 {
		return nil, fmt.Errorf("total tickets cannot be negative")
	}
	if req.TotalTickets > maxCapacity {
		return nil, fmt.Errorf("total tickets cannot exceed %d", maxCapacity)
	}

	return s.events.Create(ctx, req, requester.ID)
}

// List returns all events.
func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx)
}

// Get returns a single event by ID.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("event id is required")
	}
	return s.events.GetByID(ctx, id)
}

// Update applies an edit to an event. Owner or admin only. Metadata fields go
// straight to the repository; a capacity change routes through the ledger so
// the shrink-below-booked policy and its logging stay in one place.
func (s *EventService) Update(ctx context.Context, id string, req model.UpdateEventRequest, requester model.Identity) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin() && event.CreatedBy != requester.ID {
		return nil, ledger.ErrUnauthorized
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, fmt.Errorf("event title cannot be empty")
	}
	if req.Price != nil && *req.Price < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}

	updated, err := s.events.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if req.TotalTickets != nil {
		updated, err = s.ledger.AdjustCapacity(ctx, id, *req.TotalTickets, requester)
		if err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// Delete removes an event and all its bookings via the ledger's cascade.
func (s *EventService) Delete(ctx context.Context, id string, requester model.Identity) (int, error) {
	return s.ledger.DeleteEvent(ctx, id, requester)
}

// Bookings returns every booking for an event. Only the owning organizer or
// an admin may see them.
func (s *EventService) Bookings(ctx context.Context, eventID string, requester model.Identity) ([]model.BookingDetail, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin() && event.CreatedBy != requester.ID {
		return nil, ledger.ErrUnauthorized
	}
	return s.bookings.ListByEvent(ctx, eventID)
}

// Reserve books tickets on behalf of the caller.
func (s *EventService) Reserve(ctx context.Context, req model.CreateBookingRequest, requester model.Identity) (*model.Booking, error) {
	if req.EventID == "" {
		return nil, fmt.Errorf("event_id is required")
	}
	return s.ledger.Reserve(ctx, req.EventID, requester.ID, req.Tickets)
}

// CancelBooking releases a booking through the ledger, which enforces the
// holder/owner/admin authorization.
func (s *EventService) CancelBooking(ctx context.Context, bookingID string, requester model.Identity) error {
	if bookingID == "" {
		return fmt.Errorf("booking id is required")
	}
	return s.ledger.Release(ctx, bookingID, requester)
}
