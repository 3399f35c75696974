package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// SearchQuery filters free rooms.  Type is free text; it is parsed with
// model.ParseRoomType and may be empty.
type SearchQuery struct {
	Start  time.Time
	End    time.Time
	Guests int
	Type   string
}

// RoomQuote is a free room priced for the requested stay.
type RoomQuote struct {
	model.Room
	Nights     int
	TotalCents int64
}

// RoomTypeInfo describes one entry of the room type catalogue.
type RoomTypeInfo struct {
	Type        model.RoomType
	Name        string
	Description string
}

var roomTypeInfo = map[model.RoomType]RoomTypeInfo{
	model.RoomSingle: {Type: model.RoomSingle, Name: "Single", Description: "For 1 guest"},
	model.RoomDouble: {Type: model.RoomDouble, Name: "Double", Description: "For 2 guests"},
	model.RoomSuite:  {Type: model.RoomSuite, Name: "Suite", Description: "For 3-4 guests"},
}

// AvailabilityChecker answers whether rooms are free over a day range.
type AvailabilityChecker struct {
	store repository.Store
	now   func() time.Time
}

// NewAvailabilityChecker returns a checker reading from store.
func NewAvailabilityChecker(store repository.Store, opts ...Option) *AvailabilityChecker {
	o := newOptions(opts)
	return &AvailabilityChecker{store: store, now: o.now}
}

// IsRoomFree reports whether no pending or confirmed reservation on the
// room overlaps [start, end).
func (a *AvailabilityChecker) IsRoomFree(ctx context.Context, roomID uint64, start, end time.Time) (bool, error) {
	start, end = Day(start), Day(end)
	if !start.Before(end) {
		return false, invalid("end_date", "must be after start_date")
	}
	return a.isFree(ctx, a.store, roomID, start, end)
}

// isFree runs the overlap check through tx so that callers holding the
// room lock see their own unit of work.
func (a *AvailabilityChecker) isFree(ctx context.Context, tx repository.Tx, roomID uint64, start, end time.Time) (bool, error) {
	n, err := tx.Reservations().CountOverlapping(ctx, roomID, start, end)
	if err != nil {
		return false, fmt.Errorf("count overlapping reservations: %w", err)
	}
	return n == 0, nil
}

// SearchRooms lists offered rooms that hold at least q.Guests, match the
// optional type and are free for the whole stay, ordered by type then
// ascending nightly rate.  Each result carries the stay's total price.
func (a *AvailabilityChecker) SearchRooms(ctx context.Context, q SearchQuery) ([]RoomQuote, error) {
	start, end := Day(q.Start), Day(q.End)
	if !start.Before(end) {
		return nil, invalid("end_date", "must be after start_date")
	}
	if start.Before(Day(a.now())) {
		return nil, invalid("start_date", "cannot search past dates")
	}
	if q.Guests < 1 {
		return nil, invalid("guests", "must be at least 1")
	}
	var rt model.RoomType
	if q.Type != "" {
		t, err := model.ParseRoomType(q.Type)
		if err != nil {
			return nil, invalid("type", err.Error())
		}
		rt = t
	}

	rooms, err := a.store.Rooms().SearchFree(ctx, repository.RoomSearch{
		Start:       start,
		End:         end,
		MinCapacity: q.Guests,
		Type:        rt,
	})
	if err != nil {
		return nil, fmt.Errorf("search rooms: %w", err)
	}
	nights := Nights(start, end)
	out := make([]RoomQuote, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, RoomQuote{Room: rm, Nights: nights, TotalCents: rm.RateCents * int64(nights)})
	}
	return out, nil
}

// ListRooms returns the whole catalogue ordered by room number.
func (a *AvailabilityChecker) ListRooms(ctx context.Context) ([]model.Room, error) {
	return a.store.Rooms().List(ctx)
}

// GetRoom returns a single room.
func (a *AvailabilityChecker) GetRoom(ctx context.Context, id uint64) (model.Room, error) {
	rm, err := a.store.Rooms().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Room{}, &NotFoundError{Resource: "room", ID: id}
	}
	return rm, err
}

// RoomTypes returns the room type catalogue in display order.
func RoomTypes() []RoomTypeInfo {
	out := make([]RoomTypeInfo, 0, len(model.RoomTypes))
	for _, t := range model.RoomTypes {
		out = append(out, roomTypeInfo[t])
	}
	return out
}
