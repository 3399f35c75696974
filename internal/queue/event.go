// Package queue defines message payloads exchanged over the message broker
// together with the RabbitMQ publisher and consumer for them.
package queue

// BookingConfirmedQueue is the durable queue carrying BookingConfirmedEvent.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published once a payment has confirmed a
// reservation.  It carries enough detail for consumers to log or notify
// without querying the primary database.
type BookingConfirmedEvent struct {
	ReservationID    uint64 `json:"reservation_id"`
	UserID           uint64 `json:"user_id"`
	RoomID           uint64 `json:"room_id"`
	RoomNumber       string `json:"room_number"`
	RoomType         string `json:"room_type"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Nights           int    `json:"nights"`
	TotalAmountCents int64  `json:"total_amount_cents"`
	TransactionCode  string `json:"transaction_code"`
	ConfirmedAt      string `json:"confirmed_at"`
}
