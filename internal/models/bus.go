package models

import (
	"time"

	"github.com/google/uuid"
)

// Bus represents a physical bus owned by an operator
type Bus struct {
	ID           uuid.UUID `json:"id" db:"id"`
	BusName      string    `json:"bus_name" db:"bus_name"`
	BusNumber    string    `json:"bus_number" db:"bus_number"`
	BusType      string    `json:"bus_type" db:"bus_type"` // e.g. AC Sleeper, Non-AC Seater
	TotalSeats   int       `json:"total_seats" db:"total_seats"`
	Amenities    *string   `json:"amenities,omitempty" db:"amenities"`
	OperatorName string    `json:"operator_name" db:"operator_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Route represents a scheduled journey served by a bus
type Route struct {
	ID            uuid.UUID `json:"id" db:"id"`
	BusID         uuid.UUID `json:"bus_id" db:"bus_id"`
	Origin        string    `json:"origin" db:"origin"`
	Destination   string    `json:"destination" db:"destination"`
	DepartureTime time.Time `json:"departure_time" db:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time" db:"arrival_time"`
	Fare          float64   `json:"fare" db:"fare"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
