package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// UserRepo mirrors the 'users' table.
type UserRepo struct{ q querier }

const userColumns = "id,email,password_hash,name,surname,phone,is_active,created_at"

// Create inserts the user and sets its ID.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, name, surname, phone, is_active, created_at) VALUES (?,?,?,?,?,?,?)",
		u.Email, u.PasswordHash, u.Name, u.Surname, u.Phone, true, now)
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
	u.ID = uint64(id)
	u.IsActive = true
	u.CreatedAt = now
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Surname, &u.Phone, &u.IsActive, &u.CreatedAt)
	return u, notFound(err)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Surname, &u.Phone, &u.IsActive, &u.CreatedAt)
	return u, notFound(err)
}
