package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/apperrors"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/database"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
)

// BookingService is the booking ledger: it validates reservation requests,
// prices them, and commits them through the repository's single transactional
// unit. Seat membership and travel date of an existing booking are immutable;
// a different seat set means a new booking.
type BookingService struct {
	bookingRepo  *database.BookingRepository
	routeRepo    *database.RouteRepository
	userRepo     *database.UserRepository
	availability *AvailabilityService
	logger       *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookingRepo *database.BookingRepository,
	routeRepo *database.RouteRepository,
	userRepo *database.UserRepository,
	availability *AvailabilityService,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo:  bookingRepo,
		routeRepo:    routeRepo,
		userRepo:     userRepo,
		availability: availability,
		logger:       logger,
	}
}

// CreateBooking reserves the requested seats for the user on (bus, travel
// date). The pre-check against the availability service gives callers a
// precise unavailable list; the authoritative validate-then-commit happens
// inside the repository transaction, so a race lost after the pre-check still
// surfaces as Conflict without any partial rows.
func (s *BookingService) CreateBooking(userID uuid.UUID, req *models.CreateBookingRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.InvalidInput("%s", err.Error())
	}

	travelDate := req.ParsedTravelDate()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if travelDate.Before(today) {
		return nil, apperrors.InvalidInput("travel_date %s is in the past", req.TravelDate)
	}

	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, err
	}

	route, err := s.routeRepo.GetByID(req.RouteID)
	if err != nil {
		return nil, err
	}

	check, err := s.availability.CheckRequested(route.BusID, travelDate, req.SeatIDs)
	if err != nil {
		return nil, err
	}
	if !check.AllAvailable {
		return nil, apperrors.Conflict("seats not available: %s", joinIDs(check.UnavailableSeats))
	}

	passengerCount := req.PassengerCount
	if passengerCount == 0 {
		passengerCount = len(req.SeatIDs)
	}

	booking := &models.Booking{
		UserID:         userID,
		RouteID:        route.ID,
		BusID:          route.BusID,
		TravelDate:     travelDate,
		BookingDate:    time.Now(),
		PassengerCount: passengerCount,
		TotalAmount:    roundCents(route.Fare * float64(len(req.SeatIDs))),
		Status:         models.BookingStatusPending,
	}

	created, err := s.bookingRepo.CreateBooking(booking, req.SeatIDs)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":   created.ID,
		"user_id":      userID,
		"bus_id":       created.BusID,
		"travel_date":  req.TravelDate,
		"seats":        len(created.Seats),
		"total_amount": created.TotalAmount,
	}).Info("Booking created")

	return created, nil
}

// GetBooking returns a booking with its seats
func (s *BookingService) GetBooking(bookingID uuid.UUID) (*models.Booking, error) {
	return s.bookingRepo.GetByID(bookingID)
}

// ListByUser returns the user's bookings, newest first
func (s *BookingService) ListByUser(userID uuid.UUID) ([]models.Booking, error) {
	return s.bookingRepo.ListByUser(userID)
}

// ListAll returns every booking (administrative read)
func (s *BookingService) ListAll() ([]models.Booking, error) {
	return s.bookingRepo.ListAll()
}

// DeleteBooking removes a never-paid Pending booking, releasing its seats.
// Bookings with a successful payment must go through cancellation instead.
func (s *BookingService) DeleteBooking(bookingID uuid.UUID) error {
	if err := s.bookingRepo.Delete(bookingID); err != nil {
		return err
	}
	s.logger.WithField("booking_id", bookingID).Info("Booking deleted")
	return nil
}

// roundCents rounds a monetary amount to two decimal places
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
