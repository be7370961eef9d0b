package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/apperrors"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
)

// BusRepository handles bus master-data reads. Bus CRUD is owned by the
// catalog management collaborator; the reservation core only reads it.
type BusRepository struct {
	db *sqlx.DB
}

// NewBusRepository creates a new BusRepository
func NewBusRepository(db *sqlx.DB) *BusRepository {
	return &BusRepository{db: db}
}

// GetByID returns a bus by ID
func (r *BusRepository) GetByID(busID uuid.UUID) (*models.Bus, error) {
	var bus models.Bus
	err := r.db.Get(&bus, `
		SELECT id, bus_name, bus_number, bus_type, total_seats, amenities, operator_name, created_at
		FROM buses
		WHERE id = $1`, busID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("bus not found with ID: %s", busID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bus: %w", err)
	}
	return &bus, nil
}

// Exists reports whether a bus with the given ID exists
func (r *BusRepository) Exists(busID uuid.UUID) (bool, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM buses WHERE id = $1`, busID); err != nil {
		return false, fmt.Errorf("failed to check bus existence: %w", err)
	}
	return count > 0, nil
}
