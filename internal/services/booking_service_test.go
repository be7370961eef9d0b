package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/apperrors"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/database"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
)

func newBookingService(db *sqlx.DB) *BookingService {
	return NewBookingService(
		database.NewBookingRepository(db),
		database.NewRouteRepository(db),
		database.NewUserRepository(db),
		newAvailabilityService(db),
		testLogger(),
	)
}

func TestCreateBookingService(t *testing.T) {
	userID := uuid.New()
	routeID := uuid.New()
	busID := uuid.New()
	seatA := uuid.New()
	seatB := uuid.New()

	travelDate := time.Now().UTC().AddDate(0, 0, 7).Truncate(24 * time.Hour)
	travelDateStr := travelDate.Format("2006-01-02")

	newRequest := func() *models.CreateBookingRequest {
		return &models.CreateBookingRequest{
			RouteID:    routeID,
			TravelDate: travelDateStr,
			SeatIDs:    []uuid.UUID{seatA, seatB},
		}
	}

	expectUserLookup := func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "name", "email", "password_hash", "gender", "contact_number", "created_at",
			}).AddRow(userID, "Asha", "asha@example.com", "hash", nil, nil, time.Now()))
	}

	expectRouteLookup := func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery(`SELECT (.+) FROM routes`).
			WithArgs(routeID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "bus_id", "origin", "destination", "departure_time", "arrival_time", "fare", "created_at",
			}).AddRow(routeID, busID, "Chennai", "Bengaluru", time.Now(), time.Now(), 750.0, time.Now()))
	}

	expectSeatMap := func(mock sqlmock.Sqlmock, committed ...uuid.UUID) {
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

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newBookingService(db)

		expectUserLookup(mock)
		expectRouteLookup(mock)
		expectSeatMap(mock)

		bookingID := uuid.New()
		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM seats`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "bus_id", "seat_number", "seat_type", "seat_status", "created_at"}).
				AddRow(seatA, busID, "1A", "window", "active", now).
				AddRow(seatB, busID, "1B", "normal", "active", now))
		mock.ExpectQuery(`SELECT bs.seat_number\s+FROM booking_seats`).
			WillReturnRows(sqlmock.NewRows([]string{"seat_number"}))
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(bookingID, now, now))
		mock.ExpectQuery(`INSERT INTO booking_seats`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
		mock.ExpectQuery(`INSERT INTO booking_seats`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
		mock.ExpectCommit()

		booking, err := svc.CreateBooking(userID, newRequest())
		require.NoError(t, err)
		assert.Equal(t, bookingID, booking.ID)
		assert.Equal(t, models.BookingStatusPending, booking.Status)
		assert.Equal(t, 1500.0, booking.TotalAmount)
		assert.Equal(t, 2, booking.PassengerCount)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Pre-Check Conflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newBookingService(db)

		expectUserLookup(mock)
		expectRouteLookup(mock)
		expectSeatMap(mock, seatB)

		booking, err := svc.CreateBooking(userID, newRequest())
		assert.Nil(t, booking)
		assert.True(t, apperrors.IsConflict(err))
		assert.Contains(t, err.Error(), seatB.String())

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Past Travel Date", func(t *testing.T) {
		db, _ := newMockDB(t)
		svc := newBookingService(db)

		req := newRequest()
		req.TravelDate = "2020-01-01"

		booking, err := svc.CreateBooking(userID, req)
		assert.Nil(t, booking)
		assert.True(t, apperrors.IsInvalidInput(err))
	})

	t.Run("Duplicate Seats Rejected", func(t *testing.T) {
		db, _ := newMockDB(t)
		svc := newBookingService(db)

		req := newRequest()
		req.SeatIDs = []uuid.UUID{seatA, seatA}

		booking, err := svc.CreateBooking(userID, req)
		assert.Nil(t, booking)
		assert.True(t, apperrors.IsInvalidInput(err))
	})

	t.Run("Empty Seat Set Rejected", func(t *testing.T) {
		db, _ := newMockDB(t)
		svc := newBookingService(db)

		req := newRequest()
		req.SeatIDs = nil

		booking, err := svc.CreateBooking(userID, req)
		assert.Nil(t, booking)
		assert.True(t, apperrors.IsInvalidInput(err))
	})

	t.Run("Unknown Route", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newBookingService(db)

		expectUserLookup(mock)
		mock.ExpectQuery(`SELECT (.+) FROM routes`).
			WithArgs(routeID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		booking, err := svc.CreateBooking(userID, newRequest())
		assert.Nil(t, booking)
		assert.True(t, apperrors.IsNotFound(err))

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
