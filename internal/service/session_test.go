package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
)

func TestTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uid := f.user(t, "guest@example.com")

	tok, err := f.sessions.CreateSession(ctx, uid)
	require.NoError(t, err)
	assert.True(t, f.clock.Now().Add(model.SessionTTL).Equal(tok.ExpiresAt))

	uc, err := f.sessions.ValidateToken(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uid, uc.ID)
	assert.Equal(t, "guest@example.com", uc.Email)
	assert.Equal(t, "Ana Diaz", uc.Name)

	f.clock.Advance(model.SessionTTL - time.Second)
	_, err = f.sessions.ValidateToken(ctx, tok.Token)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Second)
	_, err = f.sessions.ValidateToken(ctx, tok.Token)
	ae, ok := IsAuth(err)
	require.True(t, ok)
	assert.Equal(t, AuthExpired, ae.Reason)
}

func TestValidateUnknownAndRevoked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uid := f.user(t, "guest@example.com")

	_, err := f.sessions.ValidateToken(ctx, "nope")
	ae, ok := IsAuth(err)
	require.True(t, ok)
	assert.Equal(t, AuthInvalid, ae.Reason)

	_, err = f.sessions.ValidateToken(ctx, "  ")
	_, ok = IsAuth(err)
	assert.True(t, ok)

	tok, err := f.sessions.CreateSession(ctx, uid)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Revoke(ctx, tok.Token))

	_, err = f.sessions.ValidateToken(ctx, tok.Token)
	ae, ok = IsAuth(err)
	require.True(t, ok)
	assert.Equal(t, AuthInvalid, ae.Reason)

	_, ok = IsAuth(f.sessions.Revoke(ctx, "unknown"))
	assert.True(t, ok)
}

func TestMultipleSessionsPerUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uid := f.user(t, "guest@example.com")

	a, err := f.sessions.CreateSession(ctx, uid)
	require.NoError(t, err)
	b, err := f.sessions.CreateSession(ctx, uid)
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)

	require.NoError(t, f.sessions.Revoke(ctx, a.Token))
	_, err = f.sessions.ValidateToken(ctx, b.Token)
	assert.NoError(t, err)
}

func TestTokenCollisionIsIntegrityError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uid := f.user(t, "guest@example.com")
	f.sessions.newToken = func() (string, error) { return "fixed-token", nil }

	first, err := f.sessions.CreateSession(ctx, uid)
	require.NoError(t, err)

	_, err = f.sessions.CreateSession(ctx, uid)
	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)

	// the original session is untouched
	_, err = f.sessions.ValidateToken(ctx, first.Token)
	assert.NoError(t, err)
}

func TestPurgeExpiredKeepsRetention(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uid := f.user(t, "guest@example.com")
	_, err := f.sessions.CreateSession(ctx, uid)
	require.NoError(t, err)

	f.clock.Advance(model.SessionTTL + time.Hour)
	n, err := f.sessions.PurgeExpired(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Advance(48 * time.Hour)
	n, err = f.sessions.PurgeExpired(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	id, err := f.accounts.Register(ctx, Registration{Email: " Guest@Example.com", Password: "secret1", Name: "Ana", Surname: "Diaz"})
	require.NoError(t, err)

	_, err = f.accounts.Register(ctx, Registration{Email: "guest@example.com", Password: "secret1", Name: "Ana", Surname: "Diaz"})
	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)

	res, err := f.accounts.Login(ctx, "GUEST@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, id, res.User.ID)
	assert.NotEmpty(t, res.Token)

	uc, err := f.sessions.ValidateToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, id, uc.ID)

	for _, tc := range []struct{ email, password string }{
		{"guest@example.com", "wrong-password"},
		{"nobody@example.com", "secret1"},
	} {
		_, err := f.accounts.Login(ctx, tc.email, tc.password)
		ae, ok := IsAuth(err)
		require.True(t, ok)
		assert.Equal(t, AuthInvalid, ae.Reason)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		r    Registration
	}{
		{"bad email", Registration{Email: "not-an-email", Password: "secret1", Name: "A", Surname: "B"}},
		{"short password", Registration{Email: "a@b.co", Password: "12345", Name: "A", Surname: "B"}},
		{"long password", Registration{Email: "a@b.co", Password: strings.Repeat("x", 73), Name: "A", Surname: "B"}},
		{"missing name", Registration{Email: "a@b.co", Password: "secret1", Surname: "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.accounts.Register(context.Background(), tt.r)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestSessionTimesFitMicrosecondColumns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uid := f.user(t, "guest@example.com")
	f.clock.Advance(123456789 * time.Nanosecond)

	tok, err := f.sessions.CreateSession(ctx, uid)
	require.NoError(t, err)
	assert.Zero(t, tok.ExpiresAt.Nanosecond()%1000)
	created := f.clock.Now().Truncate(time.Microsecond)
	assert.True(t, created.Add(model.SessionTTL).Equal(tok.ExpiresAt))

	// still valid at the last instant before expiry
	f.clock.Advance(tok.ExpiresAt.Sub(f.clock.Now()) - time.Nanosecond)
	_, err = f.sessions.ValidateToken(ctx, tok.Token)
	require.NoError(t, err)
}
