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

// RouteRepository handles route master-data reads
type RouteRepository struct {
	db *sqlx.DB
}

// NewRouteRepository creates a new RouteRepository
func NewRouteRepository(db *sqlx.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// GetByID returns a route by ID
func (r *RouteRepository) GetByID(routeID uuid.UUID) (*models.Route, error) {
	var route models.Route
	err := r.db.Get(&route, `
		SELECT id, bus_id, origin, destination, departure_time, arrival_time, fare, created_at
		FROM routes
		WHERE id = $1`, routeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("route not found with ID: %s", routeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return &route, nil
}

// GetByBusID returns all routes served by a bus
func (r *RouteRepository) GetByBusID(busID uuid.UUID) ([]models.Route, error) {
	routes := []models.Route{}
	err := r.db.Select(&routes, `
		SELECT id, bus_id, origin, destination, departure_time, arrival_time, fare, created_at
		FROM routes
		WHERE bus_id = $1
		ORDER BY departure_time`, busID)
	if err != nil {
		return nil, fmt.Errorf("failed to get routes for bus: %w", err)
	}
	return routes, nil
}
