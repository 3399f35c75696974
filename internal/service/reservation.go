package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// ReservationRequest is the input of CreateReservation.
type ReservationRequest struct {
	UserID uint64
	RoomID uint64
	Start  time.Time
	End    time.Time
	Guests int
}

// ReservationService creates reservations and lists them to their owner.
type ReservationService struct {
	store        repository.Store
	availability *AvailabilityChecker
	log          zerolog.Logger
}

// NewReservationService wires the lifecycle to the availability checker.
func NewReservationService(store repository.Store, availability *AvailabilityChecker, opts ...Option) *ReservationService {
	o := newOptions(opts)
	return &ReservationService{store: store, availability: availability, log: o.log}
}

// CreateReservation books a room for [req.Start, req.End) in state
// PENDING.  The room row is locked before the overlap check and the
// insert happens before the lock is released, so two attempts on the
// same room are serialized and at most one of two overlapping stays is
// accepted.
func (s *ReservationService) CreateReservation(ctx context.Context, req ReservationRequest) (model.Reservation, error) {
	start, end := Day(req.Start), Day(req.End)
	if !start.Before(end) {
		return model.Reservation{}, invalid("end_date", "must be after start_date")
	}
	if req.Guests < 1 {
		return model.Reservation{}, invalid("guests", "must be at least 1")
	}

	var res model.Reservation
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		room, err := tx.Rooms().LockByID(ctx, req.RoomID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &NotFoundError{Resource: "room", ID: req.RoomID}
			}
			return fmt.Errorf("lock room: %w", err)
		}
		if req.Guests > room.Capacity {
			return invalid("guests", fmt.Sprintf("room %s holds at most %d guests", room.Number, room.Capacity))
		}
		if !room.Available {
			return &ConflictError{Message: fmt.Sprintf("room %s is not open for booking", room.Number)}
		}
		free, err := s.availability.isFree(ctx, tx, room.ID, start, end)
		if err != nil {
			return err
		}
		if !free {
			return &ConflictError{Message: fmt.Sprintf("room %s is already booked for the selected dates", room.Number)}
		}

		nights := Nights(start, end)
		res = model.Reservation{
			UserID:     req.UserID,
			RoomID:     room.ID,
			StartDate:  start,
			EndDate:    end,
			Guests:     req.Guests,
			Nights:     nights,
			TotalCents: room.RateCents * int64(nights),
			Status:     model.StatusPending,
		}
		if err := tx.Reservations().Create(ctx, &res); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	s.log.Info().
		Uint64("reservation_id", res.ID).
		Uint64("room_id", res.RoomID).
		Uint64("user_id", res.UserID).
		Str("start", res.StartDate.Format(time.DateOnly)).
		Str("end", res.EndDate.Format(time.DateOnly)).
		Int64("total_cents", res.TotalCents).
		Msg("reservation created")
	return res, nil
}

// ListForUser returns the user's reservations, newest first.
func (s *ReservationService) ListForUser(ctx context.Context, userID uint64) ([]model.ReservationDetail, error) {
	list, err := s.store.Reservations().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return list, nil
}

// GetForUser returns one reservation owned by userID.  A reservation of
// another user is reported as not found.
func (s *ReservationService) GetForUser(ctx context.Context, id, userID uint64) (model.ReservationDetail, error) {
	d, err := s.store.Reservations().GetDetailForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ReservationDetail{}, &NotFoundError{Resource: "reservation", ID: id}
		}
		return model.ReservationDetail{}, fmt.Errorf("load reservation: %w", err)
	}
	return d, nil
}
