package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/apperrors"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
)

// BookingRepository owns the booking rows and their seat associations. All
// multi-row writes happen inside one transaction; a failed creation leaves no
// partial booking or seat rows behind.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateBooking persists a Pending booking and its seat associations in one
// transaction. Inside the transaction it locks the requested catalog seats,
// verifies they belong to the bus and are in service, and re-checks that none
// is already committed for (bus, travel date). Losing a race surfaces as
// Conflict, either from the re-check or from the partial unique index on
// booking_seats.
func (r *BookingRepository) CreateBooking(booking *models.Booking, seatIDs []uuid.UUID) (*models.Booking, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the catalog rows in a stable order so two overlapping requests
	// cannot deadlock against each other.
	seats := []models.Seat{}
	err = tx.Select(&seats, `
		SELECT id, bus_id, seat_number, seat_type, seat_status, created_at
		FROM seats
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, pq.Array(seatIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to lock seats: %w", err)
	}
	if len(seats) != len(seatIDs) {
		return nil, apperrors.NotFound("one or more seats do not exist")
	}

	seatByID := make(map[uuid.UUID]models.Seat, len(seats))
	for _, s := range seats {
		if s.BusID != booking.BusID {
			return nil, apperrors.InvalidInput("seat %s does not belong to bus %s", s.SeatNumber, booking.BusID)
		}
		if s.SeatStatus == models.SeatAdminOutOfService {
			return nil, apperrors.InvalidState("seat %s is out of service", s.SeatNumber)
		}
		seatByID[s.ID] = s
	}

	// Re-check commitment at commit time, not only at query time. The live
	// association rows are maintained in lockstep with booking status, so this
	// read inside the transaction closes the view-then-book race.
	committed := []string{}
	err = tx.Select(&committed, `
		SELECT bs.seat_number
		FROM booking_seats bs
		WHERE bs.bus_id = $1 AND bs.travel_date = $2 AND bs.seat_id = ANY($3)
		  AND bs.released_at IS NULL`,
		booking.BusID, booking.TravelDate, pq.Array(seatIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to re-check seat availability: %w", err)
	}
	if len(committed) > 0 {
		return nil, apperrors.Conflict("seats no longer available: %s", strings.Join(committed, ", "))
	}

	err = tx.QueryRowx(`
		INSERT INTO bookings (user_id, route_id, bus_id, travel_date, booking_date, passenger_count, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		booking.UserID, booking.RouteID, booking.BusID, booking.TravelDate,
		booking.BookingDate, booking.PassengerCount, booking.TotalAmount, booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	booking.Seats = make([]models.BookingSeat, 0, len(seatIDs))
	for _, seatID := range seatIDs {
		seat := seatByID[seatID]
		bs := models.BookingSeat{
			BookingID:  booking.ID,
			BusID:      booking.BusID,
			TravelDate: booking.TravelDate,
			SeatID:     seatID,
			SeatNumber: seat.SeatNumber,
			SeatFare:   booking.TotalAmount / float64(len(seatIDs)),
		}
		err = tx.QueryRowx(`
			INSERT INTO booking_seats (booking_id, bus_id, travel_date, seat_id, seat_number, seat_fare)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			bs.BookingID, bs.BusID, bs.TravelDate, bs.SeatID, bs.SeatNumber, bs.SeatFare,
		).Scan(&bs.ID)
		if err != nil {
			if isUniqueViolation(err, "ux_booking_seats_active") {
				return nil, apperrors.Wrap(apperrors.KindConflict, err,
					fmt.Sprintf("seat %s was committed by a concurrent booking", seat.SeatNumber))
			}
			return nil, fmt.Errorf("failed to insert booking seat %s: %w", seat.SeatNumber, err)
		}
		booking.Seats = append(booking.Seats, bs)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking transaction: %w", err)
	}

	return booking, nil
}

// GetByID returns a booking with its seat associations
func (r *BookingRepository) GetByID(bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.Get(&booking, `
		SELECT id, user_id, route_id, bus_id, travel_date, booking_date,
		       passenger_count, total_amount, status, created_at, updated_at
		FROM bookings
		WHERE id = $1`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("booking not found with ID: %s", bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if err := r.loadSeats(&booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListByUser returns all bookings of a user, newest first
func (r *BookingRepository) ListByUser(userID uuid.UUID) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := r.db.Select(&bookings, `
		SELECT id, user_id, route_id, bus_id, travel_date, booking_date,
		       passenger_count, total_amount, status, created_at, updated_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for user: %w", err)
	}
	for i := range bookings {
		if err := r.loadSeats(&bookings[i]); err != nil {
			return nil, err
		}
	}
	return bookings, nil
}

// ListAll returns every booking, newest first (administrative read)
func (r *BookingRepository) ListAll() ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := r.db.Select(&bookings, `
		SELECT id, user_id, route_id, bus_id, travel_date, booking_date,
		       passenger_count, total_amount, status, created_at, updated_at
		FROM bookings
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// GetCommittedSeatIDs derives the committed seat set for (bus, travel date)
// from bookings whose status is not Cancelled. This is the authoritative read
// path for seat commitment; it never consults seats.seat_status.
func (r *BookingRepository) GetCommittedSeatIDs(busID uuid.UUID, travelDate time.Time) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.Select(&ids, `
		SELECT bs.seat_id
		FROM booking_seats bs
		JOIN bookings b ON b.id = bs.booking_id
		WHERE bs.bus_id = $1 AND bs.travel_date = $2
		  AND bs.released_at IS NULL
		  AND b.status <> $3`,
		busID, travelDate, models.BookingStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to get committed seats: %w", err)
	}
	return ids, nil
}

// Delete removes a never-paid Pending booking and its seat rows. Paid or
// confirmed bookings must go through the cancellation service instead.
func (r *BookingRepository) Delete(bookingID uuid.UUID) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status models.BookingStatus
	err = tx.Get(&status, `SELECT status FROM bookings WHERE id = $1 FOR UPDATE`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("booking not found with ID: %s", bookingID)
	}
	if err != nil {
		return fmt.Errorf("failed to lock booking: %w", err)
	}
	if status != models.BookingStatusPending {
		return apperrors.InvalidState("only pending bookings can be deleted; booking is %s", status)
	}

	var paid int
	err = tx.Get(&paid, `
		SELECT COUNT(*) FROM payments
		WHERE booking_id = $1 AND payment_status = $2`,
		bookingID, models.PaymentStatusSuccess)
	if err != nil {
		return fmt.Errorf("failed to check payments: %w", err)
	}
	if paid > 0 {
		return apperrors.InvalidState("booking has a successful payment; cancel it instead")
	}

	if _, err := tx.Exec(`DELETE FROM booking_seats WHERE booking_id = $1`, bookingID); err != nil {
		return fmt.Errorf("failed to delete booking seats: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM bookings WHERE id = $1`, bookingID); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete transaction: %w", err)
	}
	return nil
}

// ExpirePending cancels Pending bookings created before the cutoff that have
// no successful payment, releasing their seats in the same transaction.
// Returns the IDs of the bookings it expired.
func (r *BookingRepository) ExpirePending(cutoff time.Time) ([]uuid.UUID, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ids := []uuid.UUID{}
	err = tx.Select(&ids, `
		SELECT b.id
		FROM bookings b
		WHERE b.status = $1 AND b.created_at < $2
		  AND NOT EXISTS (
			SELECT 1 FROM payments p
			WHERE p.booking_id = b.id AND p.payment_status = $3
		  )
		FOR UPDATE OF b SKIP LOCKED`,
		models.BookingStatusPending, cutoff, models.PaymentStatusSuccess)
	if err != nil {
		return nil, fmt.Errorf("failed to select expired bookings: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	_, err = tx.Exec(`
		UPDATE bookings SET status = $1, updated_at = NOW()
		WHERE id = ANY($2)`,
		models.BookingStatusCancelled, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to expire bookings: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE booking_seats SET released_at = NOW()
		WHERE booking_id = ANY($1) AND released_at IS NULL`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to release expired seats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expiry transaction: %w", err)
	}
	return ids, nil
}

func (r *BookingRepository) loadSeats(booking *models.Booking) error {
	seats := []models.BookingSeat{}
	err := r.db.Select(&seats, `
		SELECT id, booking_id, bus_id, travel_date, seat_id, seat_number, seat_fare, released_at
		FROM booking_seats
		WHERE booking_id = $1
		ORDER BY seat_number`, booking.ID)
	if err != nil {
		return fmt.Errorf("failed to load booking seats: %w", err)
	}
	booking.Seats = seats
	return nil
}
