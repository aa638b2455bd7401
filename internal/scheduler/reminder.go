// Package scheduler runs the periodic reminder job: holders of bookings for
// events starting roughly a day from now get a reminder email.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventify/eventify/internal/model"
	"github.com/eventify/eventify/internal/notify"
)

// EventSource lists events starting inside a time window.
type EventSource interface {
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]model.Event, error)
}

// BookingSource lists the bookings (with holder emails) of an event.
type BookingSource interface {
	ListByEvent(ctx context.Context, eventID string) ([]model.BookingDetail, error)
}

// Reminder periodically scans for upcoming events and notifies ticket
// holders. It is a plain time-window query on a ticker, not a job queue:
// each cycle covers the window [now+lead, now+lead+interval), so consecutive
// cycles tile the timeline and each event is reminded once.
type Reminder struct {
	events   EventSource
	bookings BookingSource
	sink     notify.Sink
	interval time.Duration
	lead     time.Duration
	logger   zerolog.Logger
}

// NewReminder constructs a Reminder.
func NewReminder(events EventSource, bookings BookingSource, sink notify.Sink, interval, lead time.Duration, logger zerolog.Logger) *Reminder {
	return &Reminder{
		events:   events,
		bookings: bookings,
		sink:     sink,
		interval: interval,
		lead:     lead,
		logger:   logger.With().Str("component", "reminder").Logger(),
	}
}

// Window returns the event-date range a cycle starting at now covers.
func Window(now time.Time, lead, interval time.Duration) (from, to time.Time) {
	from = now.Add(lead)
	return from, from.Add(interval)
}

// Run executes reminder cycles until ctx is cancelled.
func (r *Reminder) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Dur("lead", r.lead).Msg("reminder scheduler started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("reminder scheduler stopped")
			return
		case now := <-ticker.C:
			r.runCycle(ctx, now)
		}
	}
}

func (r *Reminder) runCycle(ctx context.Context, now time.Time) {
	from, to := Window(now, r.lead, r.interval)
	events, err := r.events.ListStartingBetween(ctx, from, to)
	if err != nil {
		r.logger.Error().Err(err).Msg("reminder cycle: list upcoming events failed")
		return
	}
	if len(events) == 0 {
		r.logger.Debug().Msg("reminder cycle: no upcoming events in window")
		return
	}

	for _, event := range events {
		bookings, err := r.bookings.ListByEvent(ctx, event.ID)
		if err != nil {
			r.logger.Error().Err(err).Str("event_id", event.ID).Msg("reminder cycle: list bookings failed")
			continue
		}
		for _, booking := range bookings {
			payload := notify.ReminderPayload{
				EventTitle:    event.Title,
				EventDate:     event.Date,
				EventLocation: event.Location,
				Tickets:       booking.Tickets,
			}
			if err := r.sink.Notify(ctx, notify.KindEventReminder, []string{booking.UserEmail}, payload); err != nil {
				r.logger.Warn().Err(err).
					Str("event_id", event.ID).
					Str("booking_id", booking.ID).
					Msg("reminder notification failed")
			}
		}
		r.logger.Info().Str("event_id", event.ID).Int("bookings", len(bookings)).Msg("reminders sent")
	}
}
