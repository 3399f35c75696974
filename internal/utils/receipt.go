package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ReceiptClaims is the signed proof of an approved payment handed to
// the guest.  Anyone holding the secret can verify it without touching
// the database.
type ReceiptClaims struct {
	ReservationID   uint64 `json:"rid"`
	UserID          uint64 `json:"uid"`
	AmountCents     int64  `json:"amount_cents"`
	TransactionCode string `json:"txn"`
	jwt.RegisteredClaims
}

// ErrInvalidReceipt is returned for receipts that fail signature or
// claim validation.
var ErrInvalidReceipt = errors.New("invalid receipt")

const receiptIssuer = "hotel-booking"

// IssueReceipt signs an HS256 receipt for a payment.  A zero ttl yields a
// receipt without expiry.
func IssueReceipt(secret string, c ReceiptClaims, issuedAt time.Time, ttl time.Duration) (string, error) {
	c.Issuer = receiptIssuer
	c.Subject = strconv.FormatUint(c.UserID, 10)
	c.ID = c.TransactionCode
	c.IssuedAt = jwt.NewNumericDate(issuedAt)
	if ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(ttl))
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign receipt: %w", err)
	}
	return signed, nil
}

// ParseReceipt verifies the signature and standard claims of a receipt.
func ParseReceipt(secret, token string) (*ReceiptClaims, error) {
	claims := &ReceiptClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(receiptIssuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReceipt, err)
	}
	return claims, nil
}
