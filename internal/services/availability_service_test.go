package services

import (
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/apperrors"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/database"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newAvailabilityService(db *sqlx.DB) *AvailabilityService {
	return NewAvailabilityService(
		database.NewBusRepository(db),
		database.NewSeatRepository(db),
		database.NewBookingRepository(db),
		testLogger(),
	)
}

func expectBusLookup(mock sqlmock.Sqlmock, busID uuid.UUID) {
	mock.ExpectQuery(`SELECT (.+) FROM buses`).
		WithArgs(busID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "bus_name", "bus_number", "bus_type", "total_seats", "amenities", "operator_name", "created_at",
		}).AddRow(busID, "Night Rider", "KA-01-5555", "AC Sleeper", 40, nil, "FastX Travels", time.Now()))
}

func TestResolveSeatMap(t *testing.T) {
	busID := uuid.New()
	travelDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	seatA := uuid.New() // booked
	seatB := uuid.New() // free
	seatC := uuid.New() // out of service

	t.Run("Derives Availability Per Date", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newAvailabilityService(db)

		now := time.Now()
		expectBusLookup(mock, busID)
		mock.ExpectQuery(`SELECT (.+) FROM seats`).
			WithArgs(busID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "bus_id", "seat_number", "seat_type", "seat_status", "created_at"}).
				AddRow(seatA, busID, "1A", "window", "active", now).
				AddRow(seatB, busID, "1B", "normal", "active", now).
				AddRow(seatC, busID, "1C", "normal", "out_of_service", now))
		mock.ExpectQuery(`SELECT bs.seat_id\s+FROM booking_seats`).
			WithArgs(busID, travelDate, string(models.BookingStatusCancelled)).
			WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(seatA))

		seats, err := svc.ResolveSeatMap(busID, travelDate)
		require.NoError(t, err)
		require.Len(t, seats, 3)

		byID := make(map[uuid.UUID]models.SeatAvailability)
		for _, s := range seats {
			byID[s.ID] = s.Availability
		}
		assert.Equal(t, models.SeatBooked, byID[seatA])
		assert.Equal(t, models.SeatAvailable, byID[seatB])
		assert.Equal(t, models.SeatOutOfService, byID[seatC])

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Override Wins Over Commitment", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newAvailabilityService(db)

		now := time.Now()
		expectBusLookup(mock, busID)
		mock.ExpectQuery(`SELECT (.+) FROM seats`).
			WithArgs(busID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "bus_id", "seat_number", "seat_type", "seat_status", "created_at"}).
				AddRow(seatC, busID, "1C", "normal", "out_of_service", now))
		mock.ExpectQuery(`SELECT bs.seat_id\s+FROM booking_seats`).
			WithArgs(busID, travelDate, string(models.BookingStatusCancelled)).
			WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(seatC))

		seats, err := svc.ResolveSeatMap(busID, travelDate)
		require.NoError(t, err)
		require.Len(t, seats, 1)
		assert.Equal(t, models.SeatOutOfService, seats[0].Availability)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Catalog", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newAvailabilityService(db)

		expectBusLookup(mock, busID)
		mock.ExpectQuery(`SELECT (.+) FROM seats`).
			WithArgs(busID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "bus_id", "seat_number", "seat_type", "seat_status", "created_at"}))
		mock.ExpectQuery(`SELECT bs.seat_id\s+FROM booking_seats`).
			WithArgs(busID, travelDate, string(models.BookingStatusCancelled)).
			WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))

		seats, err := svc.ResolveSeatMap(busID, travelDate)
		require.NoError(t, err)
		assert.Empty(t, seats)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Bus", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newAvailabilityService(db)

		mock.ExpectQuery(`SELECT (.+) FROM buses`).
			WithArgs(busID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		seats, err := svc.ResolveSeatMap(busID, travelDate)
		assert.Nil(t, seats)
		assert.True(t, apperrors.IsNotFound(err))

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCheckRequested(t *testing.T) {
	busID := uuid.New()
	travelDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	seatA := uuid.New()
	seatB := uuid.New()
	unknownSeat := uuid.New()

	setupSeatMap := func(mock sqlmock.Sqlmock, committed ...uuid.UUID) {
		now := time.Now()
		expectBusLookup(mock, busID)
		mock.ExpectQuery(`SELECT (.+) FROM seats`).
			WithArgs(busID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "bus_id", "seat_number", "seat_type", "seat_status", "created_at"}).
				AddRow(seatA, busID, "1A", "window", "active", now).
				AddRow(seatB, busID, "1B", "normal", "active", now))
		rows := sqlmock.NewRows([]string{"seat_id"})
		for _, id := range committed {
			rows.AddRow(id)
		}
		mock.ExpectQuery(`SELECT bs.seat_id\s+FROM booking_seats`).
			WithArgs(busID, travelDate, string(models.BookingStatusCancelled)).
			WillReturnRows(rows)
	}

	t.Run("All Available", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newAvailabilityService(db)

		setupSeatMap(mock)

		result, err := svc.CheckRequested(busID, travelDate, []uuid.UUID{seatA, seatB})
		require.NoError(t, err)
		assert.True(t, result.AllAvailable)
		assert.Empty(t, result.UnavailableSeats)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Reports Committed Seats", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newAvailabilityService(db)

		setupSeatMap(mock, seatB)

		result, err := svc.CheckRequested(busID, travelDate, []uuid.UUID{seatA, seatB})
		require.NoError(t, err)
		assert.False(t, result.AllAvailable)
		assert.Equal(t, []uuid.UUID{seatB}, result.UnavailableSeats)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Seat Is Unavailable", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newAvailabilityService(db)

		setupSeatMap(mock)

		result, err := svc.CheckRequested(busID, travelDate, []uuid.UUID{seatA, unknownSeat})
		require.NoError(t, err)
		assert.False(t, result.AllAvailable)
		assert.Equal(t, []uuid.UUID{unknownSeat}, result.UnavailableSeats)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
