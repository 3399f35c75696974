package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.  The only
// transition is PENDING -> CONFIRMED, performed by a successful payment.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
)

// Blocking reports whether a reservation in this state occupies its room.
func (s ReservationStatus) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Reservation records a guest's booking of one room for the half-open
// day range [StartDate, EndDate).
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – guest who made the reservation.
//  RoomID     – room being reserved.
//  StartDate  – check-in day (UTC midnight, inclusive).
//  EndDate    – check-out day (UTC midnight, exclusive).
//  Guests     – number of guests, at most the room capacity.
//  Nights     – EndDate - StartDate in whole days.
//  TotalCents – Nights × room rate.
//  Status     – PENDING or CONFIRMED.
//  CreatedAt  – creation timestamp.
type Reservation struct {
	ID         uint64            // reservations.id
	UserID     uint64            // reservations.user_id
	RoomID     uint64            // reservations.room_id
	StartDate  time.Time         // reservations.start_date
	EndDate    time.Time         // reservations.end_date
	Guests     int               // reservations.guests
	Nights     int               // reservations.nights
	TotalCents int64             // reservations.total_cents
	Status     ReservationStatus // reservations.status
	CreatedAt  time.Time         // reservations.created_at
}

// ReservationDetail is a reservation joined with the room it occupies,
// as listed to its owner.
type ReservationDetail struct {
	Reservation
	RoomNumber      string
	RoomType        RoomType
	RoomDescription string
}

// Overlaps reports whether [s1,e1) and [s2,e2) intersect.  A range that
// ends on day D does not overlap one that starts on day D.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
