package repository

import (
	"regexp"
	"testing"

	"safiri/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestTransitionStatusClaims(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `bookings` SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.TransitionStatus(5, domain.BookingStatusPending, domain.BookingStatusProcessing)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatusLosesRace(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	// another request already moved the booking out of PENDING
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `bookings` SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := repo.TransitionStatus(5, domain.BookingStatusPending, domain.BookingStatusProcessing)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByRef(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	bookingRows := sqlmock.NewRows([]string{"id", "ref", "user_id", "trip_id", "status", "payment_id"}).
		AddRow(3, "a1b2c3", 7, 2, domain.BookingStatusConfirmed, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings` WHERE ref = ?")).
		WillReturnRows(bookingRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `passengers`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id"}))

	b, err := repo.GetByRef("a1b2c3")
	require.NoError(t, err)
	assert.Equal(t, uint(3), b.ID)
	assert.Equal(t, uint(7), b.UserID)
	assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByRefNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `bookings` WHERE ref = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByRef("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
