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
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/config"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/database"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
)

var testRefundPolicy = config.RefundConfig{
	FullCutoff:     48 * time.Hour,
	PartialCutoff:  12 * time.Hour,
	PartialPercent: 50,
}

func newCancellationService(db *sqlx.DB) *CancellationService {
	return NewCancellationService(
		database.NewCancellationRepository(db),
		database.NewBookingRepository(db),
		database.NewPaymentRepository(db),
		database.NewRouteRepository(db),
		testRefundPolicy,
		testLogger(),
	)
}

func TestComputeRefund(t *testing.T) {
	departure := time.Date(2026, 9, 15, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		amountPaid  float64
		cancelledAt time.Time
		want        float64
	}{
		{"Full Refund Well Before Departure", 1500, departure.Add(-72 * time.Hour), 1500},
		{"Full Refund At Exact Cutoff", 1500, departure.Add(-48 * time.Hour), 1500},
		{"Partial Refund Inside Window", 1500, departure.Add(-24 * time.Hour), 750},
		{"Partial Refund At Exact Partial Cutoff", 1500, departure.Add(-12 * time.Hour), 750},
		{"No Refund Close To Departure", 1500, departure.Add(-2 * time.Hour), 0},
		{"No Refund After Departure", 1500, departure.Add(3 * time.Hour), 0},
		{"Partial Rounds To Cents", 999.99, departure.Add(-24 * time.Hour), 500},
		{"Zero Paid Yields Zero", 0, departure.Add(-72 * time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRefund(testRefundPolicy, tt.amountPaid, departure, tt.cancelledAt)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeRefundClampsToAmountPaid(t *testing.T) {
	policy := config.RefundConfig{
		FullCutoff:     48 * time.Hour,
		PartialCutoff:  12 * time.Hour,
		PartialPercent: 100,
	}
	departure := time.Date(2026, 9, 15, 8, 0, 0, 0, time.UTC)

	got := ComputeRefund(policy, 1234.56, departure, departure.Add(-24*time.Hour))
	assert.Equal(t, 1234.56, got)
}

func TestCancelBooking(t *testing.T) {
	bookingID := uuid.New()
	routeID := uuid.New()
	busID := uuid.New()
	paymentID := uuid.New()

	expectBookingLookup := func(mock sqlmock.Sqlmock, status string, travelDate time.Time) {
		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "route_id", "bus_id", "travel_date", "booking_date",
				"passenger_count", "total_amount", "status", "created_at", "updated_at",
			}).AddRow(bookingID, uuid.New(), routeID, busID, travelDate, now, 2, 1500.0, status, now, now))
		mock.ExpectQuery(`SELECT (.+) FROM booking_seats`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "booking_id", "bus_id", "travel_date", "seat_id", "seat_number", "seat_fare", "released_at",
			}).AddRow(uuid.New(), bookingID, busID, travelDate, uuid.New(), "1A", 750.0, nil))
	}

	t.Run("Full Refund Far From Departure", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newCancellationService(db)

		travelDate := time.Now().UTC().AddDate(0, 0, 10).Truncate(24 * time.Hour)
		cancellationID := uuid.New()
		now := time.Now()

		expectBookingLookup(mock, "Confirmed", travelDate)
		mock.ExpectQuery(`SELECT (.+) FROM payments`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "booking_id", "amount_paid", "payment_date", "payment_status", "payment_method", "created_at",
			}).AddRow(paymentID, bookingID, 1500.0, now, "Success", "upi", now))
		mock.ExpectQuery(`SELECT (.+) FROM routes`).
			WithArgs(routeID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "bus_id", "origin", "destination", "departure_time", "arrival_time", "fare", "created_at",
			}).AddRow(routeID, busID, "Chennai", "Bengaluru", time.Date(2000, 1, 1, 8, 0, 0, 0, time.UTC), time.Date(2000, 1, 1, 14, 0, 0, 0, time.UTC), 750.0, now))

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM bookings`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("Confirmed"))
		mock.ExpectQuery(`INSERT INTO cancellations`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(cancellationID, now))
		mock.ExpectExec(`UPDATE bookings SET status`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE booking_seats SET released_at`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		cancellation, err := svc.Cancel(bookingID, nil)
		require.NoError(t, err)
		assert.Equal(t, cancellationID, cancellation.ID)
		assert.Equal(t, 1500.0, cancellation.RefundAmount)
		assert.Equal(t, models.RefundStatusPending, cancellation.RefundStatus)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Cancelled", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newCancellationService(db)

		expectBookingLookup(mock, "Cancelled", time.Now().AddDate(0, 0, 5))

		cancellation, err := svc.Cancel(bookingID, nil)
		assert.Nil(t, cancellation)
		assert.True(t, apperrors.IsConflict(err))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unpaid Booking", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newCancellationService(db)

		expectBookingLookup(mock, "Pending", time.Now().AddDate(0, 0, 5))
		mock.ExpectQuery(`SELECT (.+) FROM payments`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		cancellation, err := svc.Cancel(bookingID, nil)
		assert.Nil(t, cancellation)
		assert.True(t, apperrors.IsInvalidState(err))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Booking", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := newCancellationService(db)

		mock.ExpectQuery(`SELECT (.+) FROM bookings`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		cancellation, err := svc.Cancel(bookingID, nil)
		assert.Nil(t, cancellation)
		assert.True(t, apperrors.IsNotFound(err))

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
