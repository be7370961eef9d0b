package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/config"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/database"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/handlers"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/middleware"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/services"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/pkg/jwt"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/pkg/mailer"
)

var version = "1.0.0"

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting FastX Booking Backend")
	logger.Infof("Version: %s", version)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	busRepo := database.NewBusRepository(db)
	routeRepo := database.NewRouteRepository(db)
	seatRepo := database.NewSeatRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	cancellationRepo := database.NewCancellationRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	var mailSender mailer.Mailer
	if cfg.Mail.Mode == "production" {
		mailSender = mailer.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
		logger.Info("SMTP mailer initialized")
	} else {
		mailSender = mailer.NewDevMailer(logger)
		logger.Info("Mailer in development mode (no actual email will be sent)")
	}

	ticketService := services.NewTicketService(mailSender, logger)
	availabilityService := services.NewAvailabilityService(busRepo, seatRepo, bookingRepo, logger)
	bookingService := services.NewBookingService(bookingRepo, routeRepo, userRepo, availabilityService, logger)
	paymentService := services.NewPaymentService(paymentRepo, bookingRepo, userRepo, routeRepo, busRepo, ticketService, cfg.Booking.AmountTolerance, logger)
	cancellationService := services.NewCancellationService(cancellationRepo, bookingRepo, paymentRepo, routeRepo, cfg.Refund, logger)

	// Start the pending-booking expiry sweep
	expiryService := services.NewExpiryService(bookingRepo, cfg.Booking, logger)
	if err := expiryService.Start(); err != nil {
		logger.Fatalf("Failed to start expiry service: %v", err)
	}

	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, jwtService, logger)
	busHandler := handlers.NewBusHandler(busRepo, routeRepo, seatRepo, logger)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, bookingService, logger)
	cancellationHandler := handlers.NewCancellationHandler(cancellationService, bookingService, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Bus catalog and availability (public)
		buses := v1.Group("/buses")
		{
			buses.GET("/:busId", busHandler.GetBus)
			buses.GET("/:busId/routes", busHandler.GetBusRoutes)
			buses.GET("/:busId/seats", availabilityHandler.GetSeatMap)
			buses.POST("/:busId/seats/check", availabilityHandler.CheckSeats)
		}

		// Booking routes (protected)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService))
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.ListMyBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.DELETE("/:id", bookingHandler.DeleteBooking)
			bookings.GET("/:id/payment", paymentHandler.GetPaymentByBooking)
			bookings.POST("/:id/cancel", cancellationHandler.CancelBooking)
			bookings.GET("/:id/cancellation", cancellationHandler.GetCancellationByBooking)
		}

		// Payment routes (protected)
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthMiddleware(jwtService))
		{
			payments.POST("", paymentHandler.RecordPayment)
			payments.GET("", paymentHandler.ListMyPayments)
		}

		// Cancellation routes (protected)
		cancellations := v1.Group("/cancellations")
		cancellations.Use(middleware.AuthMiddleware(jwtService))
		{
			cancellations.GET("", cancellationHandler.ListMyCancellations)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole("admin"))
		{
			admin.GET("/bookings", bookingHandler.ListAllBookings)
			admin.GET("/payments", paymentHandler.ListPaymentsByStatus)
			admin.GET("/cancellations", cancellationHandler.ListCancellationsByStatus)
			admin.POST("/cancellations/:id/refund", cancellationHandler.ProcessRefund)
			admin.PUT("/seats/:seatId/status", busHandler.SetSeatStatus)
			admin.GET("/reports/revenue", paymentHandler.RevenueByDate)
			admin.GET("/reports/refunds", cancellationHandler.RefundsByDate)

			admin.POST("/bookings/expire-pending", func(c *gin.Context) {
				expired, err := expiryService.Sweep()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Expiry sweep failed"})
					return
				}
				c.JSON(http.StatusOK, gin.H{"expired": expired})
			})
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	expiryService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
