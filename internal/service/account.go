package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 6

// Registration is the input of Register.
type Registration struct {
	Email    string
	Password string
	Name     string
	Surname  string
	Phone    string
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	SessionToken
	User model.UserContext
}

// AccountService registers guests and logs them in.
type AccountService struct {
	store      repository.Store
	sessions   *SessionManager
	bcryptCost int
	log        zerolog.Logger
}

// NewAccountService wires the account flows to the session manager.
func NewAccountService(store repository.Store, sessions *SessionManager, bcryptCost int, opts ...Option) *AccountService {
	o := newOptions(opts)
	return &AccountService{store: store, sessions: sessions, bcryptCost: bcryptCost, log: o.log}
}

// Register creates a user and returns its id.  A taken email fails with
// IntegrityError.
func (s *AccountService) Register(ctx context.Context, r Registration) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(r.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return 0, invalid("email", "must be a valid email address")
	}
	if len(r.Password) < MinPasswordLen {
		return 0, invalid("password", fmt.Sprintf("must be at least %d characters", MinPasswordLen))
	}
	if len(r.Password) > utils.MaxPasswordBytes {
		return 0, invalid("password", fmt.Sprintf("must be at most %d bytes", utils.MaxPasswordBytes))
	}
	name, surname := strings.TrimSpace(r.Name), strings.TrimSpace(r.Surname)
	if name == "" || surname == "" {
		return 0, invalid("name", "name and surname are required")
	}
	hash, err := utils.HashPassword(r.Password, s.bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Surname:      surname,
		Phone:        strings.TrimSpace(r.Phone),
	}
	if err := s.store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return 0, &IntegrityError{Message: "email already registered"}
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	s.log.Info().Uint64("user_id", u.ID).Msg("user registered")
	return u.ID, nil
}

// Login checks the credentials and opens a new session.  Unknown email,
// wrong password and deactivated accounts all fail with the same
// AuthError so callers cannot probe for registered emails.
func (s *AccountService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.store.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, &AuthError{Reason: AuthInvalid}
		}
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		return LoginResult{}, &AuthError{Reason: AuthInvalid}
	}
	if err := utils.CheckPassword(u.PasswordHash, password); err != nil {
		if errors.Is(err, utils.ErrPasswordMismatch) {
			return LoginResult{}, &AuthError{Reason: AuthInvalid}
		}
		return LoginResult{}, fmt.Errorf("check password: %w", err)
	}
	tok, err := s.sessions.CreateSession(ctx, u.ID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		SessionToken: tok,
		User:         model.UserContext{ID: u.ID, Email: u.Email, Name: displayName(u)},
	}, nil
}
