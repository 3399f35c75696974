package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret1", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.NoError(t, CheckPassword(hash, "secret1"))
	assert.ErrorIs(t, CheckPassword(hash, "secret2"), ErrPasswordMismatch)
	assert.Error(t, CheckPassword("not-a-hash", "secret1"))
	assert.NotErrorIs(t, CheckPassword("not-a-hash", "secret1"), ErrPasswordMismatch)
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("secret1", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestSessionTokenIsURLSafeAndUnique(t *testing.T) {
	re := regexp.MustCompile(`^[A-Za-z0-9_-]{43}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok, err := NewSessionToken()
		require.NoError(t, err)
		assert.Regexp(t, re, tok)
		assert.False(t, seen[tok])
		seen[tok] = true
	}
}

func TestTransactionCodeFormat(t *testing.T) {
	code, err := NewTransactionCode()
	require.NoError(t, err)
	assert.Regexp(t, `^TXN-[0-9A-F]{16}$`, code)
}

func TestReceipt(t *testing.T) {
	now := time.Now()
	tok, err := IssueReceipt("s3cret", ReceiptClaims{ReservationID: 4, UserID: 2, AmountCents: 16000, TransactionCode: "TXN-0123456789ABCDEF"}, now, time.Hour)
	require.NoError(t, err)

	c, err := ParseReceipt("s3cret", tok)
	require.NoError(t, err)
	assert.EqualValues(t, 4, c.ReservationID)
	assert.EqualValues(t, 16000, c.AmountCents)
	assert.Equal(t, "TXN-0123456789ABCDEF", c.ID)
	assert.Equal(t, "2", c.Subject)

	_, err = ParseReceipt("other", tok)
	assert.ErrorIs(t, err, ErrInvalidReceipt)

	expired, err := IssueReceipt("s3cret", ReceiptClaims{ReservationID: 4}, now.Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	_, err = ParseReceipt("s3cret", expired)
	assert.ErrorIs(t, err, ErrInvalidReceipt)
}
