package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/service"
)

var (
	roomCols        = []string{"id", "number", "type", "capacity", "rate_cents", "description", "available"}
	reservationCols = []string{"id", "user_id", "room_id", "start_date", "end_date", "guests", "nights", "total_cents", "status", "created_at"}

	checkIn  = time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC)
	checkOut = time.Date(2030, 1, 12, 0, 0, 0, 0, time.UTC)
)

const (
	lockRoomSQL        = `FROM rooms r WHERE r\.id = \? FOR UPDATE`
	lockReservationSQL = `FROM reservations r WHERE r\.id = \? FOR UPDATE`
	countOverlapSQL    = `SELECT COUNT\(\*\) FROM reservations x WHERE x\.room_id = \? AND x\.status IN \('PENDING','CONFIRMED'\) AND x\.start_date < \? AND \? < x\.end_date`
)

func newMockStore(t *testing.T) (*repository.MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewMySQLStore(db), mock
}

func doubleRoom() *sqlmock.Rows {
	return sqlmock.NewRows(roomCols).AddRow(7, "201", "double", 2, 8000, "", true)
}

func pendingReservation() *sqlmock.Rows {
	return sqlmock.NewRows(reservationCols).
		AddRow(42, 3, 7, checkIn, checkOut, 2, 2, 16000, "PENDING", checkIn.Add(-time.Hour))
}

func TestCreateReservationLocksRoomFirst(t *testing.T) {
	store, mock := newMockStore(t)
	svc := service.NewReservationService(store, service.NewAvailabilityChecker(store))

	mock.ExpectBegin()
	mock.ExpectQuery(lockRoomSQL).WithArgs(7).WillReturnRows(doubleRoom())
	mock.ExpectQuery(countOverlapSQL).WithArgs(7, "2030-01-12", "2030-01-10").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO reservations`).
		WithArgs(3, 7, "2030-01-10", "2030-01-12", 2, 2, 16000, "PENDING", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	res, err := svc.CreateReservation(context.Background(), service.ReservationRequest{
		UserID: 3, RoomID: 7, Start: checkIn, End: checkOut, Guests: 2,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 42, res.ID)
	assert.EqualValues(t, 16000, res.TotalCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationOverlapRollsBack(t *testing.T) {
	store, mock := newMockStore(t)
	svc := service.NewReservationService(store, service.NewAvailabilityChecker(store))

	mock.ExpectBegin()
	mock.ExpectQuery(lockRoomSQL).WithArgs(7).WillReturnRows(doubleRoom())
	mock.ExpectQuery(countOverlapSQL).WithArgs(7, "2030-01-12", "2030-01-10").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.CreateReservation(context.Background(), service.ReservationRequest{
		UserID: 3, RoomID: 7, Start: checkIn, End: checkOut, Guests: 2,
	})
	var ce *service.ConflictError
	assert.ErrorAs(t, err, &ce)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationUnknownRoom(t *testing.T) {
	store, mock := newMockStore(t)
	svc := service.NewReservationService(store, service.NewAvailabilityChecker(store))

	mock.ExpectBegin()
	mock.ExpectQuery(lockRoomSQL).WithArgs(99).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.CreateReservation(context.Background(), service.ReservationRequest{
		UserID: 3, RoomID: 99, Start: checkIn, End: checkOut, Guests: 1,
	})
	var nf *service.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentLocksReservationAndConfirms(t *testing.T) {
	store, mock := newMockStore(t)
	pay := service.NewPaymentProcessor(store, nil, "", 0)

	mock.ExpectBegin()
	mock.ExpectQuery(lockReservationSQL).WithArgs(42).WillReturnRows(pendingReservation())
	mock.ExpectExec(`INSERT INTO payments`).
		WithArgs(42, 16000, "credit_card", "9012", sqlmock.AnyArg(), "APPROVED", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(`UPDATE reservations SET status = \? WHERE id = \?`).
		WithArgs("CONFIRMED", 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM rooms r WHERE r\.id = \?`).WithArgs(7).WillReturnRows(doubleRoom())
	mock.ExpectCommit()

	out, err := pay.ProcessPayment(context.Background(), service.PaymentRequest{
		ReservationID: 42, UserID: 3, CardNumber: "4532123456789012", CVV: "123",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 5, out.ID)
	assert.Equal(t, "9012", out.CardLast4)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDuplicatePaymentRollsBack(t *testing.T) {
	store, mock := newMockStore(t)
	pay := service.NewPaymentProcessor(store, nil, "", 0)

	mock.ExpectBegin()
	mock.ExpectQuery(lockReservationSQL).WithArgs(42).WillReturnRows(pendingReservation())
	mock.ExpectExec(`INSERT INTO payments`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '42' for key 'uq_payments_reservation'"})
	mock.ExpectRollback()

	_, err := pay.ProcessPayment(context.Background(), service.PaymentRequest{
		ReservationID: 42, UserID: 3, CardNumber: "4532123456789012", CVV: "123",
	})
	var ce *service.ConflictError
	assert.ErrorAs(t, err, &ce)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentForeignReservationRollsBack(t *testing.T) {
	store, mock := newMockStore(t)
	pay := service.NewPaymentProcessor(store, nil, "", 0)

	mock.ExpectBegin()
	mock.ExpectQuery(lockReservationSQL).WithArgs(42).WillReturnRows(pendingReservation())
	mock.ExpectRollback()

	_, err := pay.ProcessPayment(context.Background(), service.PaymentRequest{
		ReservationID: 42, UserID: 8, CardNumber: "4532123456789012", CVV: "123",
	})
	var nf *service.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx(t *testing.T) {
	boom := errors.New("boom")

	t.Run("error rolls back", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectRollback()
		err := store.InTx(context.Background(), func(repository.Tx) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success commits", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectCommit()
		require.NoError(t, store.InTx(context.Background(), func(repository.Tx) error { return nil }))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit failure is reported", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(boom)
		err := store.InTx(context.Background(), func(repository.Tx) error { return nil })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDuplicateKeyMapping(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	other := &mysql.MySQLError{Number: 1452, Message: "foreign key constraint fails"}

	t.Run("user email", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`INSERT INTO users`).WillReturnError(dup)
		err := store.Users().Create(context.Background(), &model.User{Email: "a@b.co"})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("session token", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`INSERT INTO sessions`).WillReturnError(dup)
		err := store.Sessions().Create(context.Background(), &model.Session{Token: "t"})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`INSERT INTO payments`).WillReturnError(other)
		err := store.Payments().Create(context.Background(), &model.Payment{ReservationID: 1})
		assert.NotErrorIs(t, err, repository.ErrDuplicate)
		var me *mysql.MySQLError
		require.ErrorAs(t, err, &me)
		assert.EqualValues(t, 1452, me.Number)
	})
}

func TestMissingRowsAreNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`FROM reservations r WHERE r\.id = \?`).WithArgs(1).WillReturnError(sql.ErrNoRows)
	_, err := store.Reservations().GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	mock.ExpectExec(`UPDATE reservations SET status`).WithArgs("CONFIRMED", 1).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.Reservations().UpdateStatus(context.Background(), 1, model.StatusConfirmed), repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchFreeBindsDates(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`NOT EXISTS \(SELECT 1 FROM reservations x WHERE x\.room_id = r\.id AND x\.status IN \('PENDING','CONFIRMED'\) AND x\.start_date < \? AND \? < x\.end_date\) ORDER BY FIELD`).
		WithArgs(2, "double", "2030-01-12", "2030-01-10").
		WillReturnRows(doubleRoom())

	rooms, err := store.Rooms().SearchFree(context.Background(), repository.RoomSearch{
		Start: checkIn, End: checkOut, MinCapacity: 2, Type: model.RoomDouble,
	})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "201", rooms[0].Number)
	assert.NoError(t, mock.ExpectationsWereMet())
}
