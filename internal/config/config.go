package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Booking  BookingConfig
	Refund   RefundConfig
	Mail     MailConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// BookingConfig holds seat-commitment policy configuration
type BookingConfig struct {
	// PendingTTL is how long a Pending booking may hold seats without a
	// successful payment before the expiry sweep cancels it.
	PendingTTL time.Duration
	// SweepSchedule is the cron expression for the expiry sweep.
	SweepSchedule string
	// AmountTolerance is the maximum accepted difference between a payment
	// amount and the booking total.
	AmountTolerance float64
}

// RefundConfig holds cancellation refund policy parameters.
// Cancellations earlier than FullCutoff before departure refund the full
// amount paid; between FullCutoff and PartialCutoff they refund
// PartialPercent of it; later cancellations refund nothing.
type RefundConfig struct {
	FullCutoff     time.Duration
	PartialCutoff  time.Duration
	PartialPercent float64
}

// MailConfig holds SMTP configuration for e-ticket delivery
type MailConfig struct {
	Mode     string // "dev" logs instead of sending
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Booking: BookingConfig{
			PendingTTL:      time.Duration(getEnvAsInt("BOOKING_PENDING_TTL_MINUTES", 30)) * time.Minute,
			SweepSchedule:   getEnv("BOOKING_SWEEP_SCHEDULE", "0 * * * * *"),
			AmountTolerance: getEnvAsFloat("PAYMENT_AMOUNT_TOLERANCE", 0.01),
		},
		Refund: RefundConfig{
			FullCutoff:     time.Duration(getEnvAsInt("REFUND_FULL_CUTOFF_HOURS", 48)) * time.Hour,
			PartialCutoff:  time.Duration(getEnvAsInt("REFUND_PARTIAL_CUTOFF_HOURS", 12)) * time.Hour,
			PartialPercent: getEnvAsFloat("REFUND_PARTIAL_PERCENT", 50),
		},
		Mail: MailConfig{
			Mode:     getEnv("MAIL_MODE", "dev"),
			Host:     getEnv("MAIL_SMTP_HOST", ""),
			Port:     getEnv("MAIL_SMTP_PORT", "587"),
			Username: getEnv("MAIL_USERNAME", ""),
			Password: getEnv("MAIL_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "tickets@fastx.example.com"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Refund.PartialPercent < 0 || c.Refund.PartialPercent > 100 {
		return fmt.Errorf("REFUND_PARTIAL_PERCENT must be between 0 and 100")
	}

	if c.Refund.PartialCutoff > c.Refund.FullCutoff {
		return fmt.Errorf("REFUND_PARTIAL_CUTOFF_HOURS cannot exceed REFUND_FULL_CUTOFF_HOURS")
	}

	if c.Mail.Mode == "production" && c.Mail.Host == "" {
		return fmt.Errorf("MAIL_SMTP_HOST is required in production mail mode")
	}

	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice gets an environment variable as a comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
