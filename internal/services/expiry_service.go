package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/config"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/database"
)

// ExpiryService reclaims seats held by abandoned Pending bookings: bookings
// whose payment never succeeded within the configured TTL are cancelled by a
// scheduled sweep, releasing their seats through the same transactional path
// as a user cancellation.
type ExpiryService struct {
	bookingRepo *database.BookingRepository
	cfg         config.BookingConfig
	cron        *cron.Cron
	logger      *logrus.Logger
}

// NewExpiryService creates a new ExpiryService
func NewExpiryService(bookingRepo *database.BookingRepository, cfg config.BookingConfig, logger *logrus.Logger) *ExpiryService {
	return &ExpiryService{
		bookingRepo: bookingRepo,
		cfg:         cfg,
		cron:        cron.New(cron.WithSeconds()),
		logger:      logger,
	}
}

// Start schedules the sweep
func (s *ExpiryService) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.SweepSchedule, s.sweep); err != nil {
		return fmt.Errorf("failed to schedule booking expiry sweep: %w", err)
	}
	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"schedule":    s.cfg.SweepSchedule,
		"pending_ttl": s.cfg.PendingTTL.String(),
	}).Info("Booking expiry sweep scheduled")
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *ExpiryService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Booking expiry sweep stopped")
}

// Sweep runs one expiry pass immediately. Exposed for the scheduler and for
// operational use.
func (s *ExpiryService) Sweep() (int, error) {
	cutoff := time.Now().Add(-s.cfg.PendingTTL)
	ids, err := s.bookingRepo.ExpirePending(cutoff)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *ExpiryService) sweep() {
	expired, err := s.Sweep()
	if err != nil {
		s.logger.WithError(err).Error("Booking expiry sweep failed")
		return
	}
	if expired > 0 {
		s.logger.WithField("expired", expired).Info("Expired abandoned pending bookings")
	}
}
