package models

import (
	"time"

	"github.com/google/uuid"
)

// RefundStatus represents the state of a cancellation's refund
type RefundStatus string

const (
	RefundStatusPending  RefundStatus = "Pending"
	RefundStatusRefunded RefundStatus = "Refunded"
	RefundStatusRejected RefundStatus = "Rejected"
)

// Cancellation reverses a booking's seat commitment and tracks the refund of
// its payment. The refund amount never exceeds the amount paid.
type Cancellation struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	BookingID        uuid.UUID    `json:"booking_id" db:"booking_id"`
	PaymentID        uuid.UUID    `json:"payment_id" db:"payment_id"`
	CancellationDate time.Time    `json:"cancellation_date" db:"cancellation_date"`
	RefundAmount     float64      `json:"refund_amount" db:"refund_amount"`
	RefundStatus     RefundStatus `json:"refund_status" db:"refund_status"`
	Reason           *string      `json:"reason,omitempty" db:"reason"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
}

// CancelBookingRequest represents the request to cancel a booking
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}
