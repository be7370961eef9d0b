package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the outcome of a payment attempt
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusSuccess  PaymentStatus = "Success"
	PaymentStatusFailed   PaymentStatus = "Failed"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

// PaymentMethod enumerates accepted payment methods
type PaymentMethod string

const (
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodNetBanking PaymentMethod = "netbanking"
	PaymentMethodWallet     PaymentMethod = "wallet"
)

// Payment records a payment against a booking. Exactly one payment per
// booking; a Success payment is the commit signal that confirms the booking.
type Payment struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	BookingID     uuid.UUID     `json:"booking_id" db:"booking_id"`
	AmountPaid    float64       `json:"amount_paid" db:"amount_paid"`
	PaymentDate   time.Time     `json:"payment_date" db:"payment_date"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// RecordPaymentRequest represents the request to record a payment
type RecordPaymentRequest struct {
	BookingID uuid.UUID     `json:"booking_id" binding:"required"`
	Amount    float64       `json:"amount" binding:"required"`
	Method    PaymentMethod `json:"method" binding:"required"`
	Status    PaymentStatus `json:"status" binding:"required"`
}

// Validate validates the record payment request
func (r *RecordPaymentRequest) Validate() error {
	if r.BookingID == uuid.Nil {
		return errors.New("booking_id is required")
	}

	if r.Amount <= 0 {
		return errors.New("amount must be positive")
	}

	switch r.Method {
	case PaymentMethodCard, PaymentMethodUPI, PaymentMethodNetBanking, PaymentMethodWallet:
	default:
		return errors.New("unsupported payment method")
	}

	switch r.Status {
	case PaymentStatusSuccess, PaymentStatusFailed:
	default:
		return errors.New("payment status must be Success or Failed")
	}

	return nil
}
