package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/middleware"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/services"
)

// BookingHandler handles booking operations
type BookingHandler struct {
	bookings *services.BookingService
	logger   *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookings *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		logger:   logger,
	}
}

// CreateBooking creates a new booking in Pending status
// POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := h.bookings.CreateBooking(userCtx.UserID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// GetBooking returns a single booking with its seats
// GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := h.bookings.GetBooking(bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if booking.UserID != userCtx.UserID && userCtx.Role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view your own bookings"})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListMyBookings returns the authenticated user's bookings
// GET /api/v1/bookings
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookings, err := h.bookings.ListByUser(userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// ListAllBookings returns every booking (admin only)
// GET /api/v1/admin/bookings
func (h *BookingHandler) ListAllBookings(c *gin.Context) {
	bookings, err := h.bookings.ListAll()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// DeleteBooking removes an unpaid Pending booking and frees its seats
// DELETE /api/v1/bookings/:id
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := h.bookings.GetBooking(bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if booking.UserID != userCtx.UserID && userCtx.Role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own bookings"})
		return
	}

	if err := h.bookings.DeleteBooking(bookingID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}
