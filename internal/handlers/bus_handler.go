package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/database"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
)

// BusHandler exposes bus and route catalog reads plus seat administration
type BusHandler struct {
	busRepo   *database.BusRepository
	routeRepo *database.RouteRepository
	seatRepo  *database.SeatRepository
	logger    *logrus.Logger
}

// NewBusHandler creates a new BusHandler
func NewBusHandler(
	busRepo *database.BusRepository,
	routeRepo *database.RouteRepository,
	seatRepo *database.SeatRepository,
	logger *logrus.Logger,
) *BusHandler {
	return &BusHandler{
		busRepo:   busRepo,
		routeRepo: routeRepo,
		seatRepo:  seatRepo,
		logger:    logger,
	}
}

// GetBus returns bus details
// GET /api/v1/buses/:busId
func (h *BusHandler) GetBus(c *gin.Context) {
	busID, err := uuid.Parse(c.Param("busId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bus ID"})
		return
	}

	bus, err := h.busRepo.GetByID(busID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, bus)
}

// GetBusRoutes returns the routes served by a bus
// GET /api/v1/buses/:busId/routes
func (h *BusHandler) GetBusRoutes(c *gin.Context) {
	busID, err := uuid.Parse(c.Param("busId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bus ID"})
		return
	}

	routes, err := h.routeRepo.GetByBusID(busID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"routes": routes, "count": len(routes)})
}

// SetSeatStatusRequest is the payload for toggling a seat's service status
type SetSeatStatusRequest struct {
	Status models.SeatAdminStatus `json:"status" binding:"required"`
}

// SetSeatStatus marks a seat active or out of service (admin only). The flag
// is an administrative override; it does not track booking occupancy.
// PUT /api/v1/admin/seats/:seatId/status
func (h *BusHandler) SetSeatStatus(c *gin.Context) {
	seatID, err := uuid.Parse(c.Param("seatId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid seat ID"})
		return
	}

	var req SetSeatStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.Status != models.SeatAdminActive && req.Status != models.SeatAdminOutOfService {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be 'active' or 'out_of_service'"})
		return
	}

	if err := h.seatRepo.SetAdminStatus(seatID, req.Status); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"seat_id": seatID, "status": req.Status})
}
