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

// PaymentHandler handles payment operations
type PaymentHandler struct {
	payments *services.PaymentService
	bookings *services.BookingService
	logger   *logrus.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *services.PaymentService, bookings *services.BookingService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		bookings: bookings,
		logger:   logger,
	}
}

// RecordPayment records a payment outcome for a pending booking
// POST /api/v1/payments
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := h.bookings.GetBooking(req.BookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if booking.UserID != userCtx.UserID && userCtx.Role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only pay for your own bookings"})
		return
	}

	payment, err := h.payments.RecordPayment(&req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// GetPaymentByBooking returns the payment attached to a booking
// GET /api/v1/bookings/:id/payment
func (h *PaymentHandler) GetPaymentByBooking(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view your own payments"})
		return
	}

	payment, err := h.payments.GetByBooking(bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// ListMyPayments returns the authenticated user's payments
// GET /api/v1/payments
func (h *PaymentHandler) ListMyPayments(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payments, err := h.payments.ListByUser(userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}

// ListPaymentsByStatus returns payments filtered by status (admin only)
// GET /api/v1/admin/payments?status=Success
func (h *PaymentHandler) ListPaymentsByStatus(c *gin.Context) {
	status := models.PaymentStatus(c.Query("status"))
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status query parameter is required"})
		return
	}

	payments, err := h.payments.ListByStatus(status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}

// RevenueByDate reports total successful payment volume for a calendar day (admin only)
// GET /api/v1/admin/reports/revenue?date=YYYY-MM-DD
func (h *PaymentHandler) RevenueByDate(c *gin.Context) {
	raw := c.Query("date")
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
		return
	}

	total, err := h.payments.TotalRevenueByDate(date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": raw, "total_revenue": total})
}
