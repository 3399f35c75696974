package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// querier is satisfied by both *sql.DB and *sql.Tx so that every
// repository can run either standalone or inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MySQLStore implements Store on top of a MySQL connection pool.
type MySQLStore struct {
	db *sql.DB
	repos
}

// repos bundles the MySQL repositories sharing one querier.
type repos struct {
	users        *UserRepo
	sessions     *SessionRepo
	rooms        *RoomRepo
	reservations *ReservationRepo
	payments     *PaymentRepo
}

func newRepos(q querier) repos {
	return repos{
		users:        &UserRepo{q: q},
		sessions:     &SessionRepo{q: q},
		rooms:        &RoomRepo{q: q},
		reservations: &ReservationRepo{q: q},
		payments:     &PaymentRepo{q: q},
	}
}

func (r repos) Users() UserRepository               { return r.users }
func (r repos) Sessions() SessionRepository         { return r.sessions }
func (r repos) Rooms() RoomRepository               { return r.rooms }
func (r repos) Reservations() ReservationRepository { return r.reservations }
func (r repos) Payments() PaymentRepository         { return r.payments }

// NewMySQLStore returns a Store bound to db.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db, repos: newRepos(db)}
}

// DB exposes the underlying pool for health checks and migrations.
func (s *MySQLStore) DB() *sql.DB { return s.db }

// InTx begins a READ COMMITTED transaction.  Row locks taken with
// LockByID (SELECT ... FOR UPDATE) serialize writers on the same room or
// reservation; the following plain reads then see every commit made by
// the previous lock holder.
func (s *MySQLStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(newRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// isDuplicate reports whether err is a MySQL unique key violation (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// notFound maps sql.ErrNoRows onto ErrNotFound and leaves other errors
// untouched.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
