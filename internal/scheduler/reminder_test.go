package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventify/eventify/internal/model"
	"github.com/eventify/eventify/internal/notify"
)

type fakeEventSource struct {
	events   []model.Event
	err      error
	lastFrom time.Time
	lastTo   time.Time
}

func (f *fakeEventSource) ListStartingBetween(_ context.Context, from, to time.Time) ([]model.Event, error) {
	f.lastFrom, f.lastTo = from, to
	return f.events, f.err
}

type fakeBookingSource struct {
	byEvent map[string][]model.BookingDetail
	err     error
}

func (f *fakeBookingSource) ListByEvent(_ context.Context, eventID string) ([]model.BookingDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byEvent[eventID], nil
}

type recordingSink struct {
	mu    sync.Mutex
	sent  []sentNotification
	fails int
}

type sentNotification struct {
	kind       notify.Kind
	recipients []string
	payload    any
}

func (s *recordingSink) Notify(_ context.Context, kind notify.Kind, recipients []string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fails > 0 {
		s.fails--
		return errors.New("delivery failed")
	}
	s.sent = append(s.sent, sentNotification{kind: kind, recipients: recipients, payload: payload})
	return nil
}

func TestWindow(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	from, to := Window(now, 24*time.Hour, time.Hour)

	assert.Equal(t, now.Add(24*time.Hour), from)
	assert.Equal(t, now.Add(25*time.Hour), to)
}

func TestWindowsTile(t *testing.T) {
	// Consecutive cycles must cover the timeline without gaps or overlap.
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	_, to1 := Window(now, 24*time.Hour, time.Hour)
	from2, _ := Window(now.Add(time.Hour), 24*time.Hour, time.Hour)

	assert.Equal(t, to1, from2)
}

func TestRunCycleSendsReminders(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	event := model.Event{
		ID:       "ev-1",
		Title:    "Go Conference",
		Date:     now.Add(24*time.Hour + 30*time.Minute),
		Location: "City Hall",
	}
	events := &fakeEventSource{events: []model.Event{event}}
	bookings := &fakeBookingSource{byEvent: map[string][]model.BookingDetail{
		"ev-1": {
			{Booking: model.Booking{ID: "bk-1", EventID: "ev-1", Tickets: 2}, UserEmail: "alice@example.com"},
			{Booking: model.Booking{ID: "bk-2", EventID: "ev-1", Tickets: 1}, UserEmail: "bob@example.com"},
		},
	}}
	sink := &recordingSink{}

	r := NewReminder(events, bookings, sink, time.Hour, 24*time.Hour, zerolog.Nop())
	r.runCycle(context.Background(), now)

	assert.Equal(t, now.Add(24*time.Hour), events.lastFrom)
	assert.Equal(t, now.Add(25*time.Hour), events.lastTo)

	require.Len(t, sink.sent, 2)
	assert.Equal(t, notify.KindEventReminder, sink.sent[0].kind)
	assert.Equal(t, []string{"alice@example.com"}, sink.sent[0].recipients)

	payload, ok := sink.sent[0].payload.(notify.ReminderPayload)
	require.True(t, ok)
	assert.Equal(t, "Go Conference", payload.EventTitle)
	assert.Equal(t, 2, payload.Tickets)
}

func TestRunCycleNoEvents(t *testing.T) {
	sink := &recordingSink{}
	r := NewReminder(&fakeEventSource{}, &fakeBookingSource{}, sink, time.Hour, 24*time.Hour, zerolog.Nop())

	r.runCycle(context.Background(), time.Now())
	assert.Empty(t, sink.sent)
}

func TestRunCycleListEventsError(t *testing.T) {
	sink := &recordingSink{}
	events := &fakeEventSource{err: errors.New("db down")}
	r := NewReminder(events, &fakeBookingSource{}, sink, time.Hour, 24*time.Hour, zerolog.Nop())

	r.runCycle(context.Background(), time.Now())
	assert.Empty(t, sink.sent)
}

func TestRunCycleDeliveryFailureContinues(t *testing.T) {
	events := &fakeEventSource{events: []model.Event{{ID: "ev-1", Title: "X"}}}
	bookings := &fakeBookingSource{byEvent: map[string][]model.BookingDetail{
		"ev-1": {
			{Booking: model.Booking{ID: "bk-1", Tickets: 1}, UserEmail: "a@example.com"},
			{Booking: model.Booking{ID: "bk-2", Tickets: 1}, UserEmail: "b@example.com"},
		},
	}}
	sink := &recordingSink{fails: 1}

	r := NewReminder(events, bookings, sink, time.Hour, 24*time.Hour, zerolog.Nop())
	r.runCycle(context.Background(), time.Now())

	// First delivery fails, second must still go out.
	require.Len(t, sink.sent, 1)
	assert.Equal(t, []string{"b@example.com"}, sink.sent[0].recipients)
}

func TestRunStopsOnCancel(t *testing.T) {
	sink := &recordingSink{}
	r := NewReminder(&fakeEventSource{}, &fakeBookingSource{}, sink, 10*time.Millisecond, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
