package repository

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// ReservationRepo provides CRUD operations for reservations.  All
// timestamp fields are stored in UTC; start_date and end_date are DATE
// columns holding the half-open day range.
type ReservationRepo struct{ q querier }

const reservationColumns = "r.id, r.user_id, r.room_id, r.start_date, r.end_date, r.guests, r.nights, r.total_cents, r.status, r.created_at"

func scanReservation(sc interface{ Scan(...any) error }, extra ...any) (model.Reservation, error) {
	var (
		res    model.Reservation
		status string
	)
	dest := []any{&res.ID, &res.UserID, &res.RoomID, &res.StartDate, &res.EndDate,
		&res.Guests, &res.Nights, &res.TotalCents, &status, &res.CreatedAt}
	if err := sc.Scan(append(dest, extra...)...); err != nil {
		return model.Reservation{}, err
	}
	res.Status = model.ReservationStatus(status)
	return res, nil
}

// overlapsRange is the predicate for a blocking reservation, aliased x,
// intersecting a day range.  Bind overlapArgs after it.  Two ranges
// overlap iff s1 < e2 AND s2 < e1.
const overlapsRange = `x.status IN ('PENDING','CONFIRMED') AND x.start_date < ? AND ? < x.end_date`

func overlapArgs(start, end time.Time) []any { return []any{dateArg(end), dateArg(start)} }

// dateArg binds a calendar day to a DATE column.
func dateArg(t time.Time) string { return t.UTC().Format(time.DateOnly) }

// Create inserts a new reservation.  When called through a unit of work
// the caller must already hold the room lock.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	now := time.Now().UTC()
	const q = `INSERT INTO reservations (user_id, room_id, start_date, end_date, guests, nights, total_cents, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.q.ExecContext(ctx, q,
		res.UserID, res.RoomID, dateArg(res.StartDate), dateArg(res.EndDate),
		res.Guests, res.Nights, res.TotalCents, string(res.Status), now)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.CreatedAt = now
	return nil
}

// CountOverlapping counts blocking reservations whose range intersects
// [start, end).
func (r *ReservationRepo) CountOverlapping(ctx context.Context, roomID uint64, start, end time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM reservations x WHERE x.room_id = ? AND ` + overlapsRange
	var n int
	err := r.q.QueryRowContext(ctx, q, append([]any{roomID}, overlapArgs(start, end)...)...).Scan(&n)
	return n, err
}

// GetByID returns a reservation by primary key.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	res, err := scanReservation(r.q.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations r WHERE r.id = ?", id))
	return res, notFound(err)
}

// LockByID reads the reservation with FOR UPDATE so that concurrent
// payments on it run one after another.
func (r *ReservationRepo) LockByID(ctx context.Context, id uint64) (model.Reservation, error) {
	res, err := scanReservation(r.q.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations r WHERE r.id = ? FOR UPDATE", id))
	return res, notFound(err)
}

// UpdateStatus sets the status column.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, status model.ReservationStatus) error {
	res, err := r.q.ExecContext(ctx, "UPDATE reservations SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const reservationDetailQuery = `SELECT ` + reservationColumns + `, rm.number, rm.type, COALESCE(rm.description, '')
               FROM reservations r
               JOIN rooms rm ON rm.id = r.room_id`

// ListByUser returns all reservations for the given user joined with
// their rooms, newest first.  When no reservations exist, an empty slice
// is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.ReservationDetail, error) {
	rows, err := r.q.QueryContext(ctx, reservationDetailQuery+`
               WHERE r.user_id = ?
               ORDER BY r.created_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]model.ReservationDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// GetDetailForUser returns a single reservation restricted to its owner.
// Ownership is part of the WHERE clause, so a foreign reservation is
// indistinguishable from a missing one.
func (r *ReservationRepo) GetDetailForUser(ctx context.Context, id, userID uint64) (model.ReservationDetail, error) {
	d, err := scanDetail(r.q.QueryRowContext(ctx, reservationDetailQuery+`
               WHERE r.id = ? AND r.user_id = ?`, id, userID))
	return d, notFound(err)
}

func scanDetail(sc interface{ Scan(...any) error }) (model.ReservationDetail, error) {
	var (
		d        model.ReservationDetail
		roomType string
	)
	res, err := scanReservation(sc, &d.RoomNumber, &roomType, &d.RoomDescription)
	if err != nil {
		return model.ReservationDetail{}, err
	}
	d.Reservation = res
	d.RoomType = model.RoomType(roomType)
	return d, nil
}
