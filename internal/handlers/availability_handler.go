package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/services"
)

// AvailabilityHandler exposes per-date seat availability for buses
type AvailabilityHandler struct {
	availability *services.AvailabilityService
	logger       *logrus.Logger
}

// NewAvailabilityHandler creates a new AvailabilityHandler
func NewAvailabilityHandler(availability *services.AvailabilityService, logger *logrus.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		availability: availability,
		logger:       logger,
	}
}

// GetSeatMap returns every seat of a bus with its availability for a travel date
// GET /api/v1/buses/:busId/seats?travel_date=YYYY-MM-DD
func (h *AvailabilityHandler) GetSeatMap(c *gin.Context) {
	busID, err := uuid.Parse(c.Param("busId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bus ID"})
		return
	}

	travelDate, err := parseTravelDate(c.Query("travel_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seats, err := h.availability.ResolveSeatMap(busID, travelDate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bus_id":      busID,
		"travel_date": travelDate.Format("2006-01-02"),
		"seats":       seats,
	})
}

// CheckSeatsRequest is the payload for a targeted availability check
type CheckSeatsRequest struct {
	TravelDate string      `json:"travel_date" binding:"required"`
	SeatIDs    []uuid.UUID `json:"seat_ids" binding:"required"`
}

// CheckSeats reports whether a specific seat set is free for a travel date
// POST /api/v1/buses/:busId/seats/check
func (h *AvailabilityHandler) CheckSeats(c *gin.Context) {
	busID, err := uuid.Parse(c.Param("busId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bus ID"})
		return
	}

	var req CheckSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	travelDate, err := parseTravelDate(req.TravelDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.availability.CheckRequested(busID, travelDate, req.SeatIDs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTravelDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("travel_date is required (YYYY-MM-DD)")
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.New("travel_date must be in YYYY-MM-DD format")
	}
	return t, nil
}
