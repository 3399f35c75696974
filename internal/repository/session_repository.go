package repository

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// SessionRepo persists login sessions (unique 'token' column).
type SessionRepo struct{ q querier }

// Create inserts a session row.  The unique index on token turns a
// collision into ErrDuplicate instead of an overwrite.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	res, err := r.q.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token, created_at, expires_at, active) VALUES (?,?,?,?,?)",
		s.UserID, s.Token, s.CreatedAt.UTC(), s.ExpiresAt.UTC(), s.Active)
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
	s.ID = uint64(id)
	return nil
}

// GetByToken joins the session with its user.  Validity (active flag and
// expiry) is left to the caller.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (model.Session, model.User, error) {
	var (
		s model.Session
		u model.User
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT s.id, s.user_id, s.token, s.created_at, s.expires_at, s.active,
		        u.id, u.email, u.name, u.surname, u.is_active
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.token=? LIMIT 1`,
		token).Scan(&s.ID, &s.UserID, &s.Token, &s.CreatedAt, &s.ExpiresAt, &s.Active,
		&u.ID, &u.Email, &u.Name, &u.Surname, &u.IsActive)
	if err != nil {
		return model.Session{}, model.User{}, notFound(err)
	}
	return s, u, nil
}

// Deactivate marks a session inactive.
func (r *SessionRepo) Deactivate(ctx context.Context, token string) error {
	res, err := r.q.ExecContext(ctx, "UPDATE sessions SET active=0 WHERE token=?", token)
	if err != nil {
		return err
	}
	// MySQL reports 0 affected rows for an already inactive session, so
	// fall back to an existence check before answering ErrNotFound.
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	var id uint64
	err = r.q.QueryRowContext(ctx, "SELECT id FROM sessions WHERE token=? LIMIT 1", token).Scan(&id)
	return notFound(err)
}

// PurgeExpired removes sessions whose expiry is before cutoff.
func (r *SessionRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
