package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/apperrors"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/config"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/database"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
)

// CancellationService reverses bookings and computes refunds. Seat release is
// implicit: availability derives only from non-cancelled bookings, so the
// transactional status flip frees the seats with no separate seat mutation.
type CancellationService struct {
	cancellationRepo *database.CancellationRepository
	bookingRepo      *database.BookingRepository
	paymentRepo      *database.PaymentRepository
	routeRepo        *database.RouteRepository
	policy           config.RefundConfig
	logger           *logrus.Logger
}

// NewCancellationService creates a new CancellationService
func NewCancellationService(
	cancellationRepo *database.CancellationRepository,
	bookingRepo *database.BookingRepository,
	paymentRepo *database.PaymentRepository,
	routeRepo *database.RouteRepository,
	policy config.RefundConfig,
	logger *logrus.Logger,
) *CancellationService {
	return &CancellationService{
		cancellationRepo: cancellationRepo,
		bookingRepo:      bookingRepo,
		paymentRepo:      paymentRepo,
		routeRepo:        routeRepo,
		policy:           policy,
		logger:           logger,
	}
}

// Cancel cancels a paid booking, computing the refund from the policy and the
// amount actually paid. Unpaid Pending bookings cannot be cancelled here;
// delete them instead.
func (s *CancellationService) Cancel(bookingID uuid.UUID, reason *string) (*models.Cancellation, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.BookingStatusCancelled {
		return nil, apperrors.Conflict("booking %s is already cancelled", bookingID)
	}

	payment, err := s.paymentRepo.GetByBookingID(bookingID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.InvalidState("booking %s has no payment; delete it instead of cancelling", bookingID)
		}
		return nil, err
	}

	route, err := s.routeRepo.GetByID(booking.RouteID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	departureAt := departureOn(booking.TravelDate, route.DepartureTime)
	refund := ComputeRefund(s.policy, payment.AmountPaid, departureAt, now)

	cancellation := &models.Cancellation{
		BookingID:        bookingID,
		PaymentID:        payment.ID,
		CancellationDate: now,
		RefundAmount:     refund,
		RefundStatus:     models.RefundStatusPending,
		Reason:           reason,
	}

	created, err := s.cancellationRepo.CreateCancellation(cancellation)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"cancellation_id": created.ID,
		"booking_id":      bookingID,
		"refund_amount":   created.RefundAmount,
		"amount_paid":     payment.AmountPaid,
	}).Info("Booking cancelled")

	return created, nil
}

// ProcessRefund settles a Pending refund with the payment provider's outcome.
// This is the only path that marks a payment Refunded.
func (s *CancellationService) ProcessRefund(cancellationID uuid.UUID, approve bool) (*models.Cancellation, error) {
	cancellation, err := s.cancellationRepo.ProcessRefund(cancellationID, approve)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"cancellation_id": cancellationID,
		"refund_status":   cancellation.RefundStatus,
	}).Info("Refund processed")

	return cancellation, nil
}

// GetByBooking returns the cancellation for a booking
func (s *CancellationService) GetByBooking(bookingID uuid.UUID) (*models.Cancellation, error) {
	return s.cancellationRepo.GetByBookingID(bookingID)
}

// ListByUser returns the cancellations of a user's bookings
func (s *CancellationService) ListByUser(userID uuid.UUID) ([]models.Cancellation, error) {
	return s.cancellationRepo.ListByUser(userID)
}

// ListByStatus returns cancellations with the given refund status
func (s *CancellationService) ListByStatus(status models.RefundStatus) ([]models.Cancellation, error) {
	return s.cancellationRepo.ListByStatus(status)
}

// TotalRefundsIssuedByDate returns the refunded amount total for a day
func (s *CancellationService) TotalRefundsIssuedByDate(date time.Time) (float64, error) {
	return s.cancellationRepo.TotalRefundsIssuedByDate(date)
}

// ComputeRefund applies the refund policy: full refund earlier than
// FullCutoff before departure, PartialPercent between the cutoffs, nothing
// after PartialCutoff. The result never exceeds the amount paid.
func ComputeRefund(policy config.RefundConfig, amountPaid float64, departureAt, cancelledAt time.Time) float64 {
	if amountPaid <= 0 {
		return 0
	}

	lead := departureAt.Sub(cancelledAt)
	switch {
	case lead >= policy.FullCutoff:
		return amountPaid
	case lead >= policy.PartialCutoff:
		refund := roundCents(amountPaid * policy.PartialPercent / 100)
		if refund > amountPaid {
			refund = amountPaid
		}
		return refund
	default:
		return 0
	}
}

// departureOn combines the travel date with the route's departure
// time-of-day.
func departureOn(travelDate, departureTime time.Time) time.Time {
	return time.Date(
		travelDate.Year(), travelDate.Month(), travelDate.Day(),
		departureTime.Hour(), departureTime.Minute(), 0, 0, time.UTC,
	)
}
