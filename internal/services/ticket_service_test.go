package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
)

type captureMailer struct {
	to         string
	subject    string
	body       string
	attachment []byte
	filename   string
	err        error
}

func (m *captureMailer) Send(to, subject, htmlBody string, attachment []byte, filename string) error {
	m.to = to
	m.subject = subject
	m.body = htmlBody
	m.attachment = attachment
	m.filename = filename
	return m.err
}

func sampleTicketData() TicketData {
	bookingID := uuid.New()
	return TicketData{
		Booking: &models.Booking{
			ID:             bookingID,
			TravelDate:     time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
			PassengerCount: 2,
			TotalAmount:    1500,
			Status:         models.BookingStatusConfirmed,
			Seats: []models.BookingSeat{
				{BookingID: bookingID, SeatNumber: "1A", SeatFare: 750},
				{BookingID: bookingID, SeatNumber: "1B", SeatFare: 750},
			},
		},
		Payment: &models.Payment{
			ID:            uuid.New(),
			BookingID:     bookingID,
			AmountPaid:    1500,
			PaymentStatus: models.PaymentStatusSuccess,
		},
		User: &models.User{
			ID:    uuid.New(),
			Name:  "Asha",
			Email: "asha@example.com",
		},
		Route: &models.Route{
			Origin:        "Chennai",
			Destination:   "Bengaluru",
			DepartureTime: time.Date(2000, 1, 1, 8, 0, 0, 0, time.UTC),
			ArrivalTime:   time.Date(2000, 1, 1, 14, 0, 0, 0, time.UTC),
		},
		Bus: &models.Bus{
			BusName:   "Night Rider",
			BusNumber: "KA-01-5555",
		},
	}
}

func TestGeneratePDF(t *testing.T) {
	svc := NewTicketService(&captureMailer{}, testLogger())

	pdfBytes, err := svc.GeneratePDF(sampleTicketData())
	require.NoError(t, err)
	assert.NotEmpty(t, pdfBytes)
	assert.Equal(t, "%PDF", string(pdfBytes[:4]))
}

func TestDeliverTicket(t *testing.T) {
	t.Run("Sends Rendered Ticket", func(t *testing.T) {
		mail := &captureMailer{}
		svc := NewTicketService(mail, testLogger())

		data := sampleTicketData()
		err := svc.Deliver(data)
		require.NoError(t, err)

		assert.Equal(t, "asha@example.com", mail.to)
		assert.Contains(t, mail.subject, data.Booking.ID.String())
		assert.Contains(t, mail.body, "Chennai")
		assert.Equal(t, "fastx-ticket.pdf", mail.filename)
		assert.NotEmpty(t, mail.attachment)
	})

	t.Run("Propagates Mailer Error", func(t *testing.T) {
		mail := &captureMailer{err: errors.New("relay down")}
		svc := NewTicketService(mail, testLogger())

		err := svc.Deliver(sampleTicketData())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to deliver ticket")
	})
}
