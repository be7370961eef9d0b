package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/apperrors"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
)

// SeatRepository handles seat catalog reads and the administrative
// out-of-service override. The per-date booked/available state never lives
// here; it is derived by the availability service.
type SeatRepository struct {
	db *sqlx.DB
}

// NewSeatRepository creates a new SeatRepository
func NewSeatRepository(db *sqlx.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

// GetByBusID returns the full seat catalog of a bus, ordered by seat number
func (r *SeatRepository) GetByBusID(busID uuid.UUID) ([]models.Seat, error) {
	seats := []models.Seat{}
	err := r.db.Select(&seats, `
		SELECT id, bus_id, seat_number, seat_type, seat_status, created_at
		FROM seats
		WHERE bus_id = $1
		ORDER BY seat_number`, busID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seats for bus: %w", err)
	}
	return seats, nil
}

// GetByID returns a seat by ID
func (r *SeatRepository) GetByID(seatID uuid.UUID) (*models.Seat, error) {
	var seat models.Seat
	err := r.db.Get(&seat, `
		SELECT id, bus_id, seat_number, seat_type, seat_status, created_at
		FROM seats
		WHERE id = $1`, seatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("seat not found with ID: %s", seatID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get seat: %w", err)
	}
	return &seat, nil
}

// GetByIDs returns the seats with the given IDs, in no particular order
func (r *SeatRepository) GetByIDs(seatIDs []uuid.UUID) ([]models.Seat, error) {
	seats := []models.Seat{}
	err := r.db.Select(&seats, `
		SELECT id, bus_id, seat_number, seat_type, seat_status, created_at
		FROM seats
		WHERE id = ANY($1)`, pq.Array(seatIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get seats by IDs: %w", err)
	}
	return seats, nil
}

// SetAdminStatus flips the administrative override on a seat. This is the only
// write path for seat_status; it must never be used to mark a seat booked.
func (r *SeatRepository) SetAdminStatus(seatID uuid.UUID, status models.SeatAdminStatus) error {
	res, err := r.db.Exec(`UPDATE seats SET seat_status = $1 WHERE id = $2`, status, seatID)
	if err != nil {
		return fmt.Errorf("failed to update seat status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFound("seat not found with ID: %s", seatID)
	}
	return nil
}
