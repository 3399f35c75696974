package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

// DefaultPaymentMethod is recorded when the client does not name one.
const DefaultPaymentMethod = "credit_card"

const publishTimeout = 3 * time.Second

// EventPublisher receives booking events once a payment has committed.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// PaymentRequest is the input of ProcessPayment.  HolderName is accepted
// for completeness and never stored.
type PaymentRequest struct {
	ReservationID uint64
	UserID        uint64
	CardNumber    string
	CVV           string
	Method        string
	HolderName    string
}

// PaymentResult is an approved payment plus its signed receipt (empty
// when receipts are disabled).
type PaymentResult struct {
	model.Payment
	Receipt string
}

// PaymentProcessor validates simulated card data and confirms
// reservations.
type PaymentProcessor struct {
	store         repository.Store
	publisher     EventPublisher
	receiptSecret string
	receiptTTL    time.Duration
	now           func() time.Time
	log           zerolog.Logger
	newCode       func() (string, error)
}

// NewPaymentProcessor returns a processor.  publisher may be nil; an
// empty receiptSecret disables receipts.
func NewPaymentProcessor(store repository.Store, publisher EventPublisher, receiptSecret string, receiptTTL time.Duration, opts ...Option) *PaymentProcessor {
	o := newOptions(opts)
	return &PaymentProcessor{
		store:         store,
		publisher:     publisher,
		receiptSecret: receiptSecret,
		receiptTTL:    receiptTTL,
		now:           o.now,
		log:           o.log,
		newCode:       utils.NewTransactionCode,
	}
}

// ProcessPayment pays a pending reservation owned by req.UserID.  The
// reservation row is locked, its state re-read, the payment inserted and
// the state set to CONFIRMED in one unit of work, so of two concurrent
// attempts exactly one succeeds and the other gets a ConflictError.
func (p *PaymentProcessor) ProcessPayment(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = DefaultPaymentMethod
	}

	var (
		pay  model.Payment
		res  model.Reservation
		room model.Room
	)
	err := p.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		res, err = tx.Reservations().LockByID(ctx, req.ReservationID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && res.UserID != req.UserID) {
			return &NotFoundError{Resource: "reservation", ID: req.ReservationID}
		}
		if err != nil {
			return fmt.Errorf("lock reservation: %w", err)
		}
		if res.Status != model.StatusPending {
			return &ConflictError{Message: "reservation has already been paid"}
		}
		if err := validateCard(req.CardNumber, req.CVV); err != nil {
			return err
		}

		code, err := p.newCode()
		if err != nil {
			return err
		}
		card := strings.TrimSpace(req.CardNumber)
		pay = model.Payment{
			ReservationID:   res.ID,
			AmountCents:     res.TotalCents,
			Method:          method,
			CardLast4:       card[len(card)-4:],
			TransactionCode: code,
			Status:          model.PaymentApproved,
		}
		if err := tx.Payments().Create(ctx, &pay); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return &ConflictError{Message: "reservation has already been paid"}
			}
			return fmt.Errorf("insert payment: %w", err)
		}
		if err := tx.Reservations().UpdateStatus(ctx, res.ID, model.StatusConfirmed); err != nil {
			return fmt.Errorf("confirm reservation: %w", err)
		}
		res.Status = model.StatusConfirmed
		room, err = tx.Rooms().GetByID(ctx, res.RoomID)
		if err != nil {
			return fmt.Errorf("load room: %w", err)
		}
		return nil
	})
	if err != nil {
		return PaymentResult{}, err
	}

	p.log.Info().
		Uint64("reservation_id", res.ID).
		Str("transaction_code", pay.TransactionCode).
		Int64("amount_cents", pay.AmountCents).
		Msg("reservation confirmed")

	out := PaymentResult{Payment: pay}
	if p.receiptSecret != "" {
		out.Receipt, err = utils.IssueReceipt(p.receiptSecret, utils.ReceiptClaims{
			ReservationID:   res.ID,
			UserID:          res.UserID,
			AmountCents:     pay.AmountCents,
			TransactionCode: pay.TransactionCode,
		}, p.now(), p.receiptTTL)
		if err != nil {
			// The payment is committed; a missing receipt is not a failure.
			p.log.Error().Err(err).Uint64("reservation_id", res.ID).Msg("issue receipt failed")
		}
	}
	p.publish(ctx, res, room, pay)
	return out, nil
}

// VerifyReceipt checks a receipt issued by ProcessPayment.
func (p *PaymentProcessor) VerifyReceipt(token string) (*utils.ReceiptClaims, error) {
	if p.receiptSecret == "" {
		return nil, invalid("receipt", "receipts are disabled")
	}
	c, err := utils.ParseReceipt(p.receiptSecret, token)
	if err != nil {
		return nil, invalid("receipt", "invalid or expired receipt")
	}
	return c, nil
}

func (p *PaymentProcessor) publish(ctx context.Context, res model.Reservation, room model.Room, pay model.Payment) {
	if p.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	ev := queue.BookingConfirmedEvent{
		ReservationID:    res.ID,
		UserID:           res.UserID,
		RoomID:           room.ID,
		RoomNumber:       room.Number,
		RoomType:         string(room.Type),
		StartDate:        res.StartDate.Format(time.DateOnly),
		EndDate:          res.EndDate.Format(time.DateOnly),
		Nights:           res.Nights,
		TotalAmountCents: pay.AmountCents,
		TransactionCode:  pay.TransactionCode,
		ConfirmedAt:      p.now().UTC().Format(time.RFC3339),
	}
	if err := p.publisher.PublishBookingConfirmed(ctx, ev); err != nil {
		p.log.Warn().Err(err).Uint64("reservation_id", res.ID).Msg("publish booking.confirmed failed")
	}
}

func validateCard(number, cvv string) error {
	number, cvv = strings.TrimSpace(number), strings.TrimSpace(cvv)
	if len(number) != 16 || !digits(number) {
		return invalid("card_number", "must be exactly 16 digits")
	}
	if len(cvv) != 3 || !digits(cvv) {
		return invalid("cvv", "must be exactly 3 digits")
	}
	return nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
