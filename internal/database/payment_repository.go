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

// PaymentRepository owns payment rows. Recording a payment and confirming the
// booking it pays for are one transaction: the Success payment is the commit
// signal for the seat assignment.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// RecordPayment inserts a payment linked 1:1 to its booking. The booking row
// is locked and its status re-checked inside the transaction; on Success the
// booking is confirmed in the same unit of work.
func (r *PaymentRepository) RecordPayment(payment *models.Payment) (*models.Payment, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status models.BookingStatus
	err = tx.Get(&status, `SELECT status FROM bookings WHERE id = $1 FOR UPDATE`, payment.BookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("booking not found with ID: %s", payment.BookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}
	if status != models.BookingStatusPending {
		return nil, apperrors.InvalidState("booking is %s; payments are only accepted for pending bookings", status)
	}

	err = tx.QueryRowx(`
		INSERT INTO payments (booking_id, amount_paid, payment_date, payment_status, payment_method)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		payment.BookingID, payment.AmountPaid, payment.PaymentDate,
		payment.PaymentStatus, payment.PaymentMethod,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, apperrors.Conflict("a payment already exists for booking %s", payment.BookingID)
		}
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	if payment.PaymentStatus == models.PaymentStatusSuccess {
		_, err = tx.Exec(`
			UPDATE bookings SET status = $1, updated_at = NOW()
			WHERE id = $2`,
			models.BookingStatusConfirmed, payment.BookingID)
		if err != nil {
			return nil, fmt.Errorf("failed to confirm booking: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment transaction: %w", err)
	}
	return payment, nil
}

// GetByBookingID returns the payment for a booking
func (r *PaymentRepository) GetByBookingID(bookingID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Get(&payment, `
		SELECT id, booking_id, amount_paid, payment_date, payment_status, payment_method, created_at
		FROM payments
		WHERE booking_id = $1`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("payment not found for booking ID: %s", bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

// ListByUser returns all payments made by a user, newest first
func (r *PaymentRepository) ListByUser(userID uuid.UUID) ([]models.Payment, error) {
	payments := []models.Payment{}
	err := r.db.Select(&payments, `
		SELECT p.id, p.booking_id, p.amount_paid, p.payment_date, p.payment_status, p.payment_method, p.created_at
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		WHERE b.user_id = $1
		ORDER BY p.payment_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for user: %w", err)
	}
	return payments, nil
}

// ListByStatus returns all payments with the given status, newest first
func (r *PaymentRepository) ListByStatus(status models.PaymentStatus) ([]models.Payment, error) {
	payments := []models.Payment{}
	err := r.db.Select(&payments, `
		SELECT id, booking_id, amount_paid, payment_date, payment_status, payment_method, created_at
		FROM payments
		WHERE payment_status = $1
		ORDER BY payment_date DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments by status: %w", err)
	}
	return payments, nil
}

// TotalRevenueByDate sums successful payment amounts for a calendar day
func (r *PaymentRepository) TotalRevenueByDate(date time.Time) (float64, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 0, 1)

	var total float64
	err := r.db.Get(&total, `
		SELECT COALESCE(SUM(amount_paid), 0)
		FROM payments
		WHERE payment_status = $1 AND payment_date >= $2 AND payment_date < $3`,
		models.PaymentStatusSuccess, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to compute revenue: %w", err)
	}
	return total, nil
}

// ExistsSuccessForBooking reports whether a booking has a successful payment
func (r *PaymentRepository) ExistsSuccessForBooking(bookingID uuid.UUID) (bool, error) {
	var count int
	err := r.db.Get(&count, `
		SELECT COUNT(*) FROM payments
		WHERE booking_id = $1 AND payment_status = $2`,
		bookingID, models.PaymentStatusSuccess)
	if err != nil {
		return false, fmt.Errorf("failed to check payment success: %w", err)
	}
	return count > 0, nil
}
