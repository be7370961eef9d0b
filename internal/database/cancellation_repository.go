package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/apperrors"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
)

// CancellationRepository owns cancellation rows. Cancelling a booking, marking
// it Cancelled and releasing its seat associations is one transaction, so a
// cancellation and a new booking for the same seat can never interleave into
// two simultaneously-active commitments.
type CancellationRepository struct {
	db *sqlx.DB
}

// NewCancellationRepository creates a new CancellationRepository
func NewCancellationRepository(db *sqlx.DB) *CancellationRepository {
	return &CancellationRepository{db: db}
}

// CreateCancellation persists the cancellation, flips the booking to
// Cancelled and stamps released_at on its seat rows, all in one transaction.
// The booking row is locked and re-checked so a concurrent second cancel
// observes Conflict.
func (r *CancellationRepository) CreateCancellation(cancellation *models.Cancellation) (*models.Cancellation, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status models.BookingStatus
	err = tx.Get(&status, `SELECT status FROM bookings WHERE id = $1 FOR UPDATE`, cancellation.BookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("booking not found with ID: %s", cancellation.BookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}
	if status == models.BookingStatusCancelled {
		return nil, apperrors.Conflict("booking %s is already cancelled", cancellation.BookingID)
	}

	err = tx.QueryRowx(`
		INSERT INTO cancellations (booking_id, payment_id, cancellation_date, refund_amount, refund_status, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		cancellation.BookingID, cancellation.PaymentID, cancellation.CancellationDate,
		cancellation.RefundAmount, cancellation.RefundStatus, cancellation.Reason,
	).Scan(&cancellation.ID, &cancellation.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, apperrors.Conflict("booking %s is already cancelled", cancellation.BookingID)
		}
		return nil, fmt.Errorf("failed to insert cancellation: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE bookings SET status = $1, updated_at = NOW()
		WHERE id = $2`,
		models.BookingStatusCancelled, cancellation.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	// Seat release: once the booking is Cancelled the availability derivation
	// already frees the seats; the release stamp keeps the partial unique
	// index in lockstep so the slots can be re-committed.
	_, err = tx.Exec(`
		UPDATE booking_seats SET released_at = $1
		WHERE booking_id = $2 AND released_at IS NULL`,
		cancellation.CancellationDate, cancellation.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to release booking seats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation transaction: %w", err)
	}
	return cancellation, nil
}

// ProcessRefund moves a Pending refund to Refunded or Rejected. On approval
// the payment is marked Refunded in the same transaction; this is the only
// writer of that payment status.
func (r *CancellationRepository) ProcessRefund(cancellationID uuid.UUID, approve bool) (*models.Cancellation, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var cancellation models.Cancellation
	err = tx.Get(&cancellation, `
		SELECT id, booking_id, payment_id, cancellation_date, refund_amount, refund_status, reason, created_at
		FROM cancellations
		WHERE id = $1
		FOR UPDATE`, cancellationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("cancellation not found with ID: %s", cancellationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock cancellation: %w", err)
	}
	if cancellation.RefundStatus != models.RefundStatusPending {
		return nil, apperrors.InvalidState("refund is already %s", cancellation.RefundStatus)
	}

	next := models.RefundStatusRejected
	if approve {
		next = models.RefundStatusRefunded
	}

	_, err = tx.Exec(`UPDATE cancellations SET refund_status = $1 WHERE id = $2`, next, cancellationID)
	if err != nil {
		return nil, fmt.Errorf("failed to update refund status: %w", err)
	}

	if approve {
		_, err = tx.Exec(`UPDATE payments SET payment_status = $1 WHERE id = $2`,
			models.PaymentStatusRefunded, cancellation.PaymentID)
		if err != nil {
			return nil, fmt.Errorf("failed to mark payment refunded: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit refund transaction: %w", err)
	}

	cancellation.RefundStatus = next
	return &cancellation, nil
}

// GetByBookingID returns the cancellation for a booking
func (r *CancellationRepository) GetByBookingID(bookingID uuid.UUID) (*models.Cancellation, error) {
	var cancellation models.Cancellation
	err := r.db.Get(&cancellation, `
		SELECT id, booking_id, payment_id, cancellation_date, refund_amount, refund_status, reason, created_at
		FROM cancellations
		WHERE booking_id = $1`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("cancellation not found for booking ID: %s", bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cancellation: %w", err)
	}
	return &cancellation, nil
}

// ListByUser returns all cancellations of a user's bookings, newest first
func (r *CancellationRepository) ListByUser(userID uuid.UUID) ([]models.Cancellation, error) {
	cancellations := []models.Cancellation{}
	err := r.db.Select(&cancellations, `
		SELECT c.id, c.booking_id, c.payment_id, c.cancellation_date, c.refund_amount, c.refund_status, c.reason, c.created_at
		FROM cancellations c
		JOIN bookings b ON b.id = c.booking_id
		WHERE b.user_id = $1
		ORDER BY c.cancellation_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cancellations for user: %w", err)
	}
	return cancellations, nil
}

// ListByStatus returns all cancellations with the given refund status
func (r *CancellationRepository) ListByStatus(status models.RefundStatus) ([]models.Cancellation, error) {
	cancellations := []models.Cancellation{}
	err := r.db.Select(&cancellations, `
		SELECT id, booking_id, payment_id, cancellation_date, refund_amount, refund_status, reason, created_at
		FROM cancellations
		WHERE refund_status = $1
		ORDER BY cancellation_date DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list cancellations by status: %w", err)
	}
	return cancellations, nil
}

// TotalRefundsIssuedByDate sums refunded amounts for cancellations processed
// on a calendar day
func (r *CancellationRepository) TotalRefundsIssuedByDate(date time.Time) (float64, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 0, 1)

	var total float64
	err := r.db.Get(&total, `
		SELECT COALESCE(SUM(refund_amount), 0)
		FROM cancellations
		WHERE refund_status = $1 AND cancellation_date >= $2 AND cancellation_date < $3`,
		models.RefundStatusRefunded, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to compute refunds issued: %w", err)
	}
	return total, nil
}
