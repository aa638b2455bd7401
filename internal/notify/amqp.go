package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

const publishTimeout = 5 * time.Second

// AMQPSink publishes notifications as JSON messages to a topic exchange,
// using the notification kind as the routing key. Downstream consumers
// (mail workers, audit, analytics) bind what they care about.
type AMQPSink struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	confirms chan amqp.Confirmation
	exchange string
	logger   zerolog.Logger
}

// envelope is the wire format of a published notification.
type envelope struct {
	Kind       Kind      `json:"kind"`
	Recipients []string  `json:"recipients"`
	Payload    any       `json:"payload"`
	SentAt     time.Time `json:"sent_at"`
}

// NewAMQPSink dials the broker, declares the exchange and puts the channel
// into confirm mode so publishes are acknowledged.
func NewAMQPSink(url, exchange string, logger zerolog.Logger) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	s := &AMQPSink{
		conn:     conn,
		channel:  ch,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
		exchange: exchange,
		logger:   logger.With().Str("component", "amqp-sink").Logger(),
	}
	s.logger.Info().Str("exchange", exchange).Msg("connected to rabbitmq")
	return s, nil
}

// Notify implements Sink.
func (s *AMQPSink) Notify(ctx context.Context, kind Kind, recipients []string, payload any) error {
	body, err := json.Marshal(envelope{
		Kind:       kind,
		Recipients: recipients,
		Payload:    payload,
		SentAt:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = s.channel.Publish(
		s.exchange,
		string(kind), // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}

	select {
	case confirm := <-s.confirms:
		if !confirm.Ack {
			return errors.New("notification published but not confirmed")
		}
		return nil
	case <-time.After(publishTimeout):
		return errors.New("publish confirmation timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts down the broker connection.
func (s *AMQPSink) Close() {
	if s.conn != nil && !s.conn.IsClosed() {
		_ = s.conn.Close()
	}
}
