package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher sends booking events to RabbitMQ.  Each publish opens its own
// connection so that a broker outage never leaves the server holding a
// dead channel; failures are logged and returned so callers may ignore
// them.
type Publisher struct {
	url string
	log zerolog.Logger
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, log zerolog.Logger) *Publisher {
	return &Publisher{url: url, log: log.With().Str("component", "publisher").Logger()}
}

// defaultDialTimeout bounds the TCP dial and AMQP handshake when ctx
// carries no deadline.
const defaultDialTimeout = 5 * time.Second

// PublishBookingConfirmed publishes ev to the booking.confirmed queue as a
// persistent message.  It returns no later than ctx's deadline: the dial
// and handshake are bounded by it, and the remaining broker round trips
// are abandoned when ctx is done.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, ev BookingConfirmedEvent) error {
	done := make(chan error, 1)
	go func() { done <- p.publish(ctx, ev) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		p.log.Warn().Err(ctx.Err()).Uint64("reservation_id", ev.ReservationID).Msg("rabbitmq publish abandoned")
		return ctx.Err()
	}
}

// dialTimeout is the time left until ctx's deadline.
func dialTimeout(ctx context.Context) time.Duration {
	dl, ok := ctx.Deadline()
	if !ok {
		return defaultDialTimeout
	}
	if left := time.Until(dl); left > 0 {
		return left
	}
	return time.Millisecond
}

func (p *Publisher) publish(ctx context.Context, ev BookingConfirmedEvent) error {
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout(ctx))})
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		BookingConfirmedQueue, // name
		true,                  // durable
		false,                 // autoDelete
		false,                 // exclusive
		false,                 // noWait
		nil,                   // args
	); err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    ev.TransactionCode,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                    // default exchange
		BookingConfirmedQueue, // routing key = queue name
		false,                 // mandatory
		false,                 // immediate
		pub,
	); err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq publish failed")
		return err
	}
	p.log.Debug().Uint64("reservation_id", ev.ReservationID).Msg("booking.confirmed published")
	return nil
}
