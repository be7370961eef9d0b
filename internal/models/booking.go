package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

// Booking aggregates a user, a route, a travel date, a seat set and a
// monetary total. Seats and travel date are immutable after creation; the
// status moves Pending -> Confirmed -> Cancelled only through the payment and
// cancellation services.
type Booking struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	UserID         uuid.UUID     `json:"user_id" db:"user_id"`
	RouteID        uuid.UUID     `json:"route_id" db:"route_id"`
	BusID          uuid.UUID     `json:"bus_id" db:"bus_id"`
	TravelDate     time.Time     `json:"travel_date" db:"travel_date"`
	BookingDate    time.Time     `json:"booking_date" db:"booking_date"`
	PassengerCount int           `json:"passenger_count" db:"passenger_count"`
	TotalAmount    float64       `json:"total_amount" db:"total_amount"`
	Status         BookingStatus `json:"status" db:"status"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`

	// Seats is populated on reads; it is not a live object graph.
	Seats []BookingSeat `json:"seats,omitempty" db:"-"`
}

// IsActive reports whether the booking currently commits its seats
func (b *Booking) IsActive() bool {
	return b.Status != BookingStatusCancelled
}

// BookingSeat is one row of the booking/seat association. The partial unique
// index on (bus_id, travel_date, seat_id) WHERE released_at IS NULL is the
// store-level double-booking guard; released_at is stamped when the owning
// booking is cancelled or expired.
type BookingSeat struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	BookingID  uuid.UUID  `json:"booking_id" db:"booking_id"`
	BusID      uuid.UUID  `json:"bus_id" db:"bus_id"`
	TravelDate time.Time  `json:"travel_date" db:"travel_date"`
	SeatID     uuid.UUID  `json:"seat_id" db:"seat_id"`
	SeatNumber string     `json:"seat_number" db:"seat_number"`
	SeatFare   float64    `json:"seat_fare" db:"seat_fare"`
	ReleasedAt *time.Time `json:"released_at,omitempty" db:"released_at"`
}

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	RouteID        uuid.UUID   `json:"route_id" binding:"required"`
	TravelDate     string      `json:"travel_date" binding:"required"` // YYYY-MM-DD
	SeatIDs        []uuid.UUID `json:"seat_ids" binding:"required"`
	PassengerCount int         `json:"passenger_count"`
}

// Validate validates the create booking request
func (r *CreateBookingRequest) Validate() error {
	if r.RouteID == uuid.Nil {
		return errors.New("route_id is required")
	}

	if len(r.SeatIDs) == 0 {
		return errors.New("seat_ids cannot be empty")
	}

	seen := make(map[uuid.UUID]struct{}, len(r.SeatIDs))
	for _, id := range r.SeatIDs {
		if id == uuid.Nil {
			return errors.New("seat_ids cannot contain a nil ID")
		}
		if _, dup := seen[id]; dup {
			return errors.New("seat_ids cannot contain duplicates")
		}
		seen[id] = struct{}{}
	}

	if r.PassengerCount < 0 {
		return errors.New("passenger_count cannot be negative")
	}
	if r.PassengerCount > 0 && r.PassengerCount != len(r.SeatIDs) {
		return errors.New("passenger_count must match the number of seats")
	}

	if _, err := time.Parse("2006-01-02", r.TravelDate); err != nil {
		return errors.New("travel_date must be in YYYY-MM-DD format")
	}

	return nil
}

// ParsedTravelDate returns the travel date as a calendar date in UTC.
// Validate must have passed first.
func (r *CreateBookingRequest) ParsedTravelDate() time.Time {
	d, _ := time.Parse("2006-01-02", r.TravelDate)
	return d
}
