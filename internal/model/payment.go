package model

import "time"

// PaymentStatus is always APPROVED once a payment row exists; the card
// simulation never declines a well-formed card.
type PaymentStatus string

const PaymentApproved PaymentStatus = "APPROVED"

// Payment is the single payment that confirmed a reservation.  It is
// immutable after creation.
//
// Fields:
//  ID              – primary key identifier.
//  ReservationID   – reservation paid for (unique).
//  AmountCents     – amount charged, equal to the reservation total.
//  Method          – payment method label supplied by the client.
//  CardLast4       – last four digits of the card.
//  TransactionCode – unique code returned to the client.
//  Status          – APPROVED.
//  CreatedAt       – timestamp of the payment.
type Payment struct {
	ID              uint64        // payments.id
	ReservationID   uint64        // payments.reservation_id
	AmountCents     int64         // payments.amount_cents
	Method          string        // payments.method
	CardLast4       string        // payments.card_last4
	TransactionCode string        // payments.transaction_code
	Status          PaymentStatus // payments.status
	CreatedAt       time.Time     // payments.created_at
}
