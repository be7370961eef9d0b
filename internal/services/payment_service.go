package services

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/apperrors"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/database"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
)

// PaymentService is the payment gate: a Success payment is the commit signal
// that finalizes a booking's seat assignment. A Failed payment leaves the
// booking Pending with its seats held until the expiry sweep reclaims them.
type PaymentService struct {
	paymentRepo     *database.PaymentRepository
	bookingRepo     *database.BookingRepository
	userRepo        *database.UserRepository
	routeRepo       *database.RouteRepository
	busRepo         *database.BusRepository
	tickets         *TicketService
	amountTolerance float64
	logger          *logrus.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo *database.PaymentRepository,
	bookingRepo *database.BookingRepository,
	userRepo *database.UserRepository,
	routeRepo *database.RouteRepository,
	busRepo *database.BusRepository,
	tickets *TicketService,
	amountTolerance float64,
	logger *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:     paymentRepo,
		bookingRepo:     bookingRepo,
		userRepo:        userRepo,
		routeRepo:       routeRepo,
		busRepo:         busRepo,
		tickets:         tickets,
		amountTolerance: amountTolerance,
		logger:          logger,
	}
}

// RecordPayment records a payment for a Pending booking. The amount must
// match the booking total within the configured tolerance. On Success the
// booking is confirmed in the same transaction and the ticket delivery
// collaborator is notified afterwards; delivery failure never rolls anything
// back.
func (s *PaymentService) RecordPayment(req *models.RecordPaymentRequest) (*models.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.InvalidInput("%s", err.Error())
	}

	booking, err := s.bookingRepo.GetByID(req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusPending {
		return nil, apperrors.InvalidState("booking is %s; payments are only accepted for pending bookings", booking.Status)
	}

	if math.Abs(req.Amount-booking.TotalAmount) > s.amountTolerance {
		return nil, apperrors.InvalidInput("amount %.2f does not match booking total %.2f", req.Amount, booking.TotalAmount)
	}

	payment := &models.Payment{
		BookingID:     req.BookingID,
		AmountPaid:    req.Amount,
		PaymentDate:   time.Now(),
		PaymentStatus: req.Status,
		PaymentMethod: req.Method,
	}

	recorded, err := s.paymentRepo.RecordPayment(payment)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id":     recorded.ID,
		"booking_id":     booking.ID,
		"amount":         recorded.AmountPaid,
		"payment_status": recorded.PaymentStatus,
	}).Info("Payment recorded")

	if recorded.PaymentStatus == models.PaymentStatusSuccess && s.tickets != nil {
		go s.deliverTicket(booking, recorded)
	}

	return recorded, nil
}

// deliverTicket resolves the ticket data and hands it to the delivery
// collaborator. Runs outside the payment transaction.
func (s *PaymentService) deliverTicket(booking *models.Booking, payment *models.Payment) {
	log := s.logger.WithField("booking_id", booking.ID)

	user, err := s.userRepo.GetByID(booking.UserID)
	if err != nil {
		log.WithError(err).Error("Ticket delivery: failed to resolve user")
		return
	}
	route, err := s.routeRepo.GetByID(booking.RouteID)
	if err != nil {
		log.WithError(err).Error("Ticket delivery: failed to resolve route")
		return
	}
	bus, err := s.busRepo.GetByID(booking.BusID)
	if err != nil {
		log.WithError(err).Error("Ticket delivery: failed to resolve bus")
		return
	}

	data := TicketData{Booking: booking, Payment: payment, User: user, Route: route, Bus: bus}
	if err := s.tickets.Deliver(data); err != nil {
		log.WithError(err).Error("Ticket delivery failed")
	}
}

// GetByBooking returns the payment for a booking
func (s *PaymentService) GetByBooking(bookingID uuid.UUID) (*models.Payment, error) {
	return s.paymentRepo.GetByBookingID(bookingID)
}

// ListByUser returns a user's payments
func (s *PaymentService) ListByUser(userID uuid.UUID) ([]models.Payment, error) {
	return s.paymentRepo.ListByUser(userID)
}

// ListByStatus returns payments with the given status
func (s *PaymentService) ListByStatus(status models.PaymentStatus) ([]models.Payment, error) {
	return s.paymentRepo.ListByStatus(status)
}

// TotalRevenueByDate returns the sum of successful payments for a day
func (s *PaymentService) TotalRevenueByDate(date time.Time) (float64, error) {
	return s.paymentRepo.TotalRevenueByDate(date)
}

// IsPaymentSuccessful reports whether a booking has a successful payment
func (s *PaymentService) IsPaymentSuccessful(bookingID uuid.UUID) (bool, error) {
	return s.paymentRepo.ExistsSuccessForBooking(bookingID)
}
