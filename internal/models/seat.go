package models

import (
	"time"

	"github.com/google/uuid"
)

// SeatAdminStatus is the administrative override on a seat. It is bus-global
// and date-independent, so it can never mean "booked": per-date commitment is
// always derived from active bookings.
type SeatAdminStatus string

const (
	SeatAdminActive       SeatAdminStatus = "active"
	SeatAdminOutOfService SeatAdminStatus = "out_of_service"
)

// SeatType categorizes a seat within the bus layout
type SeatType string

const (
	SeatTypeNormal  SeatType = "normal"
	SeatTypeWindow  SeatType = "window"
	SeatTypeSleeper SeatType = "sleeper"
)

// Seat is one seat in a bus's catalog. Seat numbers are unique within a bus.
type Seat struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	BusID      uuid.UUID       `json:"bus_id" db:"bus_id"`
	SeatNumber string          `json:"seat_number" db:"seat_number"`
	SeatType   SeatType        `json:"seat_type" db:"seat_type"`
	SeatStatus SeatAdminStatus `json:"seat_status" db:"seat_status"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// SeatAvailability is the derived per-(bus, travel date) state of a seat
type SeatAvailability string

const (
	SeatAvailable    SeatAvailability = "Available"
	SeatBooked       SeatAvailability = "Booked"
	SeatOutOfService SeatAvailability = "OutOfService"
)

// SeatWithAvailability pairs a catalog seat with its derived availability for
// a specific travel date
type SeatWithAvailability struct {
	Seat
	Availability SeatAvailability `json:"availability"`
}

// AvailabilityCheckResult reports whether a requested seat set is free for a
// (bus, travel date) pair
type AvailabilityCheckResult struct {
	BusID            uuid.UUID   `json:"bus_id"`
	TravelDate       string      `json:"travel_date"`
	RequestedSeatIDs []uuid.UUID `json:"requested_seats"`
	AllAvailable     bool        `json:"all_available"`
	UnavailableSeats []uuid.UUID `json:"unavailable_seats"`
}
