package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/service"
)

// PaymentHandler confirms reservations through the simulated card
// payment and verifies receipts.
type PaymentHandler struct {
	Payments *service.PaymentProcessor
}

func NewPaymentHandler(p *service.PaymentProcessor) *PaymentHandler {
	return &PaymentHandler{Payments: p}
}

type payReq struct {
	ReservationID uint64 `json:"reservation_id"`
	Method        string `json:"method"`
	CardNumber    string `json:"card_number"`
	CVV           string `json:"cvv"`
	HolderName    string `json:"holder_name"`
}

type payResp struct {
	TransactionCode string    `json:"transaction_code"`
	ReservationID   uint64    `json:"reservation_id"`
	Amount          float64   `json:"amount"`
	AmountCents     int64     `json:"amount_cents"`
	Method          string    `json:"method"`
	CardLast4       string    `json:"card_last4"`
	Status          string    `json:"status"`
	PaidAt          time.Time `json:"paid_at"`
	Receipt         string    `json:"receipt,omitempty"`
}

type verifyReq struct {
	Receipt string `json:"receipt"`
}

// Pay handles POST /v1/payments.
func (h *PaymentHandler) Pay(c echo.Context) error {
	uc, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req payReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.ReservationID == 0 {
		return badRequest(c, "reservation_id is required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Payments.ProcessPayment(ctx, service.PaymentRequest{
		ReservationID: req.ReservationID,
		UserID:        uc.ID,
		CardNumber:    req.CardNumber,
		CVV:           req.CVV,
		Method:        req.Method,
		HolderName:    req.HolderName,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, payResp{
		TransactionCode: res.TransactionCode,
		ReservationID:   res.ReservationID,
		Amount:          price(res.AmountCents),
		AmountCents:     res.AmountCents,
		Method:          res.Method,
		CardLast4:       res.CardLast4,
		Status:          string(res.Status),
		PaidAt:          res.CreatedAt,
		Receipt:         res.Receipt,
	})
}

// VerifyReceipt handles POST /v1/receipts/verify.
func (h *PaymentHandler) VerifyReceipt(c echo.Context) error {
	var req verifyReq
	if err := c.Bind(&req); err != nil || req.Receipt == "" {
		return badRequest(c, "receipt is required")
	}
	claims, err := h.Payments.VerifyReceipt(req.Receipt)
	if err != nil {
		return writeError(c, err)
	}
	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	return c.JSON(http.StatusOK, echo.Map{
		"valid":            true,
		"reservation_id":   claims.ReservationID,
		"user_id":          claims.UserID,
		"amount_cents":     claims.AmountCents,
		"transaction_code": claims.TransactionCode,
		"issued_at":        issuedAt,
	})
}
