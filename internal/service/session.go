package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

// SessionToken is what a client receives after logging in.
type SessionToken struct {
	Token     string
	ExpiresAt time.Time
}

// SessionManager issues and validates opaque bearer tokens.  Validation
// is read-only; expiry is decided lazily by comparing timestamps.
type SessionManager struct {
	store    repository.Store
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
	newToken func() (string, error)
}

// NewSessionManager returns a manager issuing sessions that live for ttl
// (model.SessionTTL when ttl is zero).
func NewSessionManager(store repository.Store, ttl time.Duration, opts ...Option) *SessionManager {
	o := newOptions(opts)
	if ttl <= 0 {
		ttl = model.SessionTTL
	}
	return &SessionManager{
		store:    store,
		ttl:      ttl,
		now:      o.now,
		log:      o.log,
		newToken: utils.NewSessionToken,
	}
}

// CreateSession persists a new active session for userID.  A token
// collision fails with IntegrityError; the existing session is left
// untouched.
func (m *SessionManager) CreateSession(ctx context.Context, userID uint64) (SessionToken, error) {
	token, err := m.newToken()
	if err != nil {
		return SessionToken{}, err
	}
	// DATETIME(6) keeps microseconds; anything finer would be rounded by
	// MySQL and could move the stored expiry past created+ttl.
	now := m.now().UTC().Truncate(time.Microsecond)
	s := &model.Session{
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
		Active:    true,
	}
	if err := m.store.Sessions().Create(ctx, s); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return SessionToken{}, &IntegrityError{Message: "session token collision"}
		}
		return SessionToken{}, fmt.Errorf("create session: %w", err)
	}
	m.log.Info().Uint64("user_id", userID).Time("expires_at", s.ExpiresAt).Msg("session created")
	return SessionToken{Token: token, ExpiresAt: s.ExpiresAt}, nil
}

// ValidateToken resolves a bearer token into the user it authenticates.
// Unknown, revoked or owner-deactivated sessions are AuthInvalid; an
// active session past its expiry is AuthExpired.
func (m *SessionManager) ValidateToken(ctx context.Context, token string) (model.UserContext, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.UserContext{}, &AuthError{Reason: AuthInvalid}
	}
	s, u, err := m.store.Sessions().GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.UserContext{}, &AuthError{Reason: AuthInvalid}
		}
		return model.UserContext{}, fmt.Errorf("load session: %w", err)
	}
	if !s.Active || !u.IsActive {
		return model.UserContext{}, &AuthError{Reason: AuthInvalid}
	}
	if !s.ValidAt(m.now()) {
		return model.UserContext{}, &AuthError{Reason: AuthExpired}
	}
	return model.UserContext{ID: u.ID, Email: u.Email, Name: displayName(u)}, nil
}

// Revoke deactivates the session behind token.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	if err := m.store.Sessions().Deactivate(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &AuthError{Reason: AuthInvalid}
		}
		return fmt.Errorf("revoke session: %w", err)
	}
	m.log.Info().Msg("session revoked")
	return nil
}

// PurgeExpired deletes sessions that expired more than retention ago.
func (m *SessionManager) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	return m.store.Sessions().PurgeExpired(ctx, m.now().Add(-retention))
}

func displayName(u model.User) string {
	return strings.TrimSpace(u.Name + " " + u.Surname)
}
