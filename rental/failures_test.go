package rental

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDisk = errors.New("disk I/O error")

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewWithDB(sqlx.NewDb(mockDB, "sqlite3"), nil), mock
}

func TestReadFailuresPropagate(t *testing.T) {
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("SELECT .+ FROM Users").WillReturnError(errDisk)

		users, err := s.GetAllUsers(ctx)
		assert.Nil(t, users)
		assert.ErrorIs(t, err, errDisk)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("car", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("SELECT .+ FROM Cars WHERE carId").WithArgs("c1").WillReturnError(errDisk)

		car, err := s.GetCarByCarID(ctx, "c1")
		assert.Nil(t, car)
		assert.ErrorIs(t, err, errDisk)
	})

	t.Run("cars by role", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("SELECT .+ FROM `Cars` WHERE").WithArgs("Available").WillReturnError(errDisk)

		cars, err := s.GetCarsByRole(ctx, RoleGuest)
		assert.Nil(t, cars)
		assert.ErrorIs(t, err, errDisk)
	})

	t.Run("bookings", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("FROM Bookings\\s+INNER JOIN Cars").WithArgs("u1").WillReturnError(errDisk)

		bookings, err := s.GetAllBookings(ctx, "u1")
		assert.Nil(t, bookings)
		assert.ErrorIs(t, err, errDisk)
	})
}

func TestWriteFailuresPropagate(t *testing.T) {
	ctx := context.Background()

	t.Run("add user", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO Users").WillReturnError(errDisk)

		id, err := s.AddUser(ctx, testUser("u1", "a@x.com"))
		assert.Equal(t, int64(-1), id)
		assert.ErrorIs(t, err, errDisk)
		assert.False(t, errors.Is(err, ErrConflict))
	})

	t.Run("delete car", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("DELETE FROM Cars").WithArgs("c1").WillReturnError(errDisk)

		assert.ErrorIs(t, s.DeleteCar(ctx, "c1"), errDisk)
	})

	t.Run("update status", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("UPDATE Cars SET availability").WillReturnError(errDisk)

		assert.ErrorIs(t, s.UpdateCarStatus(ctx, "c1"), errDisk)
	})

	t.Run("book car rolls back", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO Bookings").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("UPDATE Cars SET availability").WillReturnError(errDisk)
		mock.ExpectRollback()

		id, err := s.BookCar(ctx, testBooking("b1", "u1", "c1", "2024-01-01", "2024-01-03", 100))
		assert.Equal(t, int64(-1), id)
		assert.ErrorIs(t, err, errDisk)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
