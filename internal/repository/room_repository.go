package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// RoomRepo reads the 'rooms' table.
type RoomRepo struct{ q querier }

const roomColumns = "r.id, r.number, r.type, r.capacity, r.rate_cents, COALESCE(r.description, ''), r.available"

func scanRoom(sc interface{ Scan(...any) error }) (model.Room, error) {
	var (
		rm model.Room
		t  string
	)
	if err := sc.Scan(&rm.ID, &rm.Number, &t, &rm.Capacity, &rm.RateCents, &rm.Description, &rm.Available); err != nil {
		return model.Room{}, err
	}
	rm.Type = model.RoomType(t)
	return rm, nil
}

// GetByID returns a single room.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	rm, err := scanRoom(r.q.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms r WHERE r.id = ?", id))
	return rm, notFound(err)
}

// LockByID reads the room with FOR UPDATE.  Inside a transaction the row
// lock is held until commit or rollback, which serializes every booking
// attempt on the room.
func (r *RoomRepo) LockByID(ctx context.Context, id uint64) (model.Room, error) {
	rm, err := scanRoom(r.q.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms r WHERE r.id = ? FOR UPDATE", id))
	return rm, notFound(err)
}

// List returns the full catalogue ordered by room number.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT "+roomColumns+" FROM rooms r ORDER BY r.number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// SearchFree returns available rooms with enough capacity and no
// blocking reservation overlapping [q.Start, q.End).
func (r *RoomRepo) SearchFree(ctx context.Context, q RoomSearch) ([]model.Room, error) {
	where := []string{"r.available = 1", "r.capacity >= ?"}
	args := []any{q.MinCapacity}
	if q.Type != "" {
		where = append(where, "r.type = ?")
		args = append(args, string(q.Type))
	}
	where = append(where, "NOT EXISTS (SELECT 1 FROM reservations x WHERE x.room_id = r.id AND "+overlapsRange+")")
	args = append(args, overlapArgs(q.Start, q.End)...)

	query := "SELECT " + roomColumns + " FROM rooms r WHERE " + strings.Join(where, " AND ") +
		" ORDER BY FIELD(r.type, 'single', 'double', 'suite'), r.rate_cents, r.number"
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}
