package repository

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// PaymentRepo persists rows of the 'payments' table.  reservation_id and
// transaction_code carry unique indexes.
type PaymentRepo struct{ q querier }

// Create inserts an approved payment.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	now := time.Now().UTC()
	const q = `INSERT INTO payments (reservation_id, amount_cents, method, card_last4, transaction_code, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.q.ExecContext(ctx, q,
		p.ReservationID, p.AmountCents, p.Method, p.CardLast4, p.TransactionCode, string(p.Status), now)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.CreatedAt = now
	return nil
}

// GetByReservation returns the payment recorded for a reservation.
func (r *PaymentRepo) GetByReservation(ctx context.Context, reservationID uint64) (model.Payment, error) {
	var (
		p      model.Payment
		status string
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT id, reservation_id, amount_cents, method, card_last4, transaction_code, status, created_at
		 FROM payments WHERE reservation_id = ?`, reservationID).
		Scan(&p.ID, &p.ReservationID, &p.AmountCents, &p.Method, &p.CardLast4, &p.TransactionCode, &status, &p.CreatedAt)
	if err != nil {
		return model.Payment{}, notFound(err)
	}
	p.Status = model.PaymentStatus(status)
	return p, nil
}
