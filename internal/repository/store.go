package repository

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// UserRepository persists registered users.
type UserRepository interface {
	// Create inserts u and fills in its ID and CreatedAt.  A taken email
	// yields ErrDuplicate.
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// SessionRepository persists login sessions.
type SessionRepository interface {
	// Create inserts s and fills in its ID.  A token collision yields
	// ErrDuplicate; an existing session is never overwritten.
	Create(ctx context.Context, s *model.Session) error
	// GetByToken returns the session together with its owner.
	GetByToken(ctx context.Context, token string) (model.Session, model.User, error)
	// Deactivate marks the session inactive.  ErrNotFound when the token
	// is unknown.
	Deactivate(ctx context.Context, token string) error
	// PurgeExpired deletes sessions that expired before the cutoff and
	// returns how many were removed.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// RoomSearch filters free rooms for a day range.
type RoomSearch struct {
	Start       time.Time
	End         time.Time
	MinCapacity int
	Type        model.RoomType // empty matches every type
}

// RoomRepository reads the static room catalogue.
type RoomRepository interface {
	GetByID(ctx context.Context, id uint64) (model.Room, error)
	// LockByID reads the room and, inside a unit of work, holds an
	// exclusive lock on it until the unit of work ends.
	LockByID(ctx context.Context, id uint64) (model.Room, error)
	// List returns every room ordered by number.
	List(ctx context.Context) ([]model.Room, error)
	// SearchFree returns available rooms matching q with no blocking
	// reservation overlapping [q.Start, q.End), ordered by type then
	// ascending rate.
	SearchFree(ctx context.Context, q RoomSearch) ([]model.Room, error)
}

// ReservationRepository persists reservations.
type ReservationRepository interface {
	// Create inserts r and fills in its ID and CreatedAt.
	Create(ctx context.Context, r *model.Reservation) error
	// CountOverlapping counts PENDING or CONFIRMED reservations on the
	// room whose range overlaps [start, end).
	CountOverlapping(ctx context.Context, roomID uint64, start, end time.Time) (int, error)
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	// LockByID reads the reservation and, inside a unit of work, holds an
	// exclusive lock on it until the unit of work ends.
	LockByID(ctx context.Context, id uint64) (model.Reservation, error)
	UpdateStatus(ctx context.Context, id uint64, status model.ReservationStatus) error
	// ListByUser returns the user's reservations, newest first.
	ListByUser(ctx context.Context, userID uint64) ([]model.ReservationDetail, error)
	// GetDetailForUser returns ErrNotFound when the reservation does not
	// exist or belongs to another user.
	GetDetailForUser(ctx context.Context, id, userID uint64) (model.ReservationDetail, error)
}

// PaymentRepository persists payments.
type PaymentRepository interface {
	// Create inserts p and fills in its ID and CreatedAt.  A second
	// payment for the same reservation yields ErrDuplicate.
	Create(ctx context.Context, p *model.Payment) error
	GetByReservation(ctx context.Context, reservationID uint64) (model.Payment, error)
}

// Tx exposes repositories bound to one unit of work.
type Tx interface {
	Users() UserRepository
	Sessions() SessionRepository
	Rooms() RoomRepository
	Reservations() ReservationRepository
	Payments() PaymentRepository
}

// Store is the persistence boundary injected into every service.
type Store interface {
	Tx
	// InTx runs fn as a single all-or-nothing unit of work.  When fn
	// returns an error every write made through tx is discarded and the
	// error is returned unchanged.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}
