package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/database"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
)

// AvailabilityService computes seat availability for a (bus, travel date)
// pair. Commitment is always derived from active bookings at read time; the
// seats.seat_status column only contributes the administrative out-of-service
// override. There is no cached or stored per-date flag to go stale.
type AvailabilityService struct {
	busRepo     *database.BusRepository
	seatRepo    *database.SeatRepository
	bookingRepo *database.BookingRepository
	logger      *logrus.Logger
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(
	busRepo *database.BusRepository,
	seatRepo *database.SeatRepository,
	bookingRepo *database.BookingRepository,
	logger *logrus.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		busRepo:     busRepo,
		seatRepo:    seatRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// ResolveSeatMap returns every seat in the bus's catalog tagged with its
// derived availability for the travel date. A bus with no seats yields an
// empty slice, not an error. Past dates are allowed; they report historical
// commitment state.
func (s *AvailabilityService) ResolveSeatMap(busID uuid.UUID, travelDate time.Time) ([]models.SeatWithAvailability, error) {
	if _, err := s.busRepo.GetByID(busID); err != nil {
		return nil, err
	}

	seats, err := s.seatRepo.GetByBusID(busID)
	if err != nil {
		return nil, err
	}

	committed, err := s.bookingRepo.GetCommittedSeatIDs(busID, travelDate)
	if err != nil {
		return nil, err
	}
	committedSet := make(map[uuid.UUID]struct{}, len(committed))
	for _, id := range committed {
		committedSet[id] = struct{}{}
	}

	result := make([]models.SeatWithAvailability, 0, len(seats))
	for _, seat := range seats {
		availability := models.SeatAvailable
		if seat.SeatStatus == models.SeatAdminOutOfService {
			availability = models.SeatOutOfService
		} else if _, booked := committedSet[seat.ID]; booked {
			availability = models.SeatBooked
		}
		result = append(result, models.SeatWithAvailability{Seat: seat, Availability: availability})
	}

	s.logger.WithFields(logrus.Fields{
		"bus_id":      busID,
		"travel_date": travelDate.Format("2006-01-02"),
		"seats":       len(result),
		"committed":   len(committed),
	}).Debug("Resolved seat availability")

	return result, nil
}

// CheckRequested reports whether every requested seat is available for the
// travel date, listing the ones that are not. Out-of-service seats count as
// unavailable.
func (s *AvailabilityService) CheckRequested(busID uuid.UUID, travelDate time.Time, seatIDs []uuid.UUID) (*models.AvailabilityCheckResult, error) {
	seatMap, err := s.ResolveSeatMap(busID, travelDate)
	if err != nil {
		return nil, err
	}

	availability := make(map[uuid.UUID]models.SeatAvailability, len(seatMap))
	for _, seat := range seatMap {
		availability[seat.ID] = seat.Availability
	}

	unavailable := []uuid.UUID{}
	for _, id := range seatIDs {
		if availability[id] != models.SeatAvailable {
			unavailable = append(unavailable, id)
		}
	}

	return &models.AvailabilityCheckResult{
		BusID:            busID,
		TravelDate:       travelDate.Format("2006-01-02"),
		RequestedSeatIDs: seatIDs,
		AllAvailable:     len(unavailable) == 0,
		UnavailableSeats: unavailable,
	}, nil
}
