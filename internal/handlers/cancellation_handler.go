package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/middleware"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/services"
)

// CancellationHandler handles booking cancellations and refund processing
type CancellationHandler struct {
	cancellations *services.CancellationService
	bookings      *services.BookingService
	logger        *logrus.Logger
}

// NewCancellationHandler creates a new CancellationHandler
func NewCancellationHandler(
	cancellations *services.CancellationService,
	bookings *services.BookingService,
	logger *logrus.Logger,
) *CancellationHandler {
	return &CancellationHandler{
		cancellations: cancellations,
		bookings:      bookings,
		logger:        logger,
	}
}

// CancelBooking cancels a paid booking, releases its seats and queues a refund
// POST /api/v1/bookings/:id/cancel
func (h *CancellationHandler) CancelBooking(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only cancel your own bookings"})
		return
	}

	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	cancellation, err := h.cancellations.Cancel(bookingID, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, cancellation)
}

// GetCancellationByBooking returns the cancellation record for a booking
// GET /api/v1/bookings/:id/cancellation
func (h *CancellationHandler) GetCancellationByBooking(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view your own cancellations"})
		return
	}

	cancellation, err := h.cancellations.GetByBooking(bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, cancellation)
}

// ListMyCancellations returns the authenticated user's cancellations
// GET /api/v1/cancellations
func (h *CancellationHandler) ListMyCancellations(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cancellations, err := h.cancellations.ListByUser(userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cancellations": cancellations, "count": len(cancellations)})
}

// ListCancellationsByStatus returns cancellations filtered by refund status (admin only)
// GET /api/v1/admin/cancellations?status=Pending
func (h *CancellationHandler) ListCancellationsByStatus(c *gin.Context) {
	status := models.RefundStatus(c.Query("status"))
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status query parameter is required"})
		return
	}

	cancellations, err := h.cancellations.ListByStatus(status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cancellations": cancellations, "count": len(cancellations)})
}

// ProcessRefundRequest is the payload for settling a pending refund
type ProcessRefundRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// ProcessRefund approves or rejects a pending refund (admin only)
// POST /api/v1/admin/cancellations/:id/refund
func (h *CancellationHandler) ProcessRefund(c *gin.Context) {
	cancellationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cancellation ID"})
		return
	}

	var req ProcessRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	cancellation, err := h.cancellations.ProcessRefund(cancellationID, *req.Approve)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, cancellation)
}

// RefundsByDate reports total refunds issued on a calendar day (admin only)
// GET /api/v1/admin/reports/refunds?date=YYYY-MM-DD
func (h *CancellationHandler) RefundsByDate(c *gin.Context) {
	raw := c.Query("date")
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
		return
	}

	total, err := h.cancellations.TotalRefundsIssuedByDate(date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": raw, "total_refunds": total})
}
