package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/sirupsen/logrus"

	"github.com/05kaavya/fastx-bus-ticket-booking-app/internal/models"
	"github.com/05kaavya/fastx-bus-ticket-booking-app/pkg/mailer"
)

// TicketService renders e-ticket PDFs and emails them after a successful
// payment. It is a delivery collaborator: failures here are logged and never
// affect booking or payment state.
type TicketService struct {
	mailer mailer.Mailer
	logger *logrus.Logger
}

// NewTicketService creates a new TicketService
func NewTicketService(m mailer.Mailer, logger *logrus.Logger) *TicketService {
	return &TicketService{mailer: m, logger: logger}
}

// TicketData carries everything the ticket needs, resolved by the caller
type TicketData struct {
	Booking *models.Booking
	Payment *models.Payment
	User    *models.User
	Route   *models.Route
	Bus     *models.Bus
}

// GeneratePDF renders the e-ticket as a PDF document
func (s *TicketService) GeneratePDF(data TicketData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 12, "FastX E-Ticket", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	line := func(label, value string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(50, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
	}

	seatNumbers := make([]string, len(data.Booking.Seats))
	for i, seat := range data.Booking.Seats {
		seatNumbers[i] = seat.SeatNumber
	}

	line("Booking ID", data.Booking.ID.String())
	line("Passenger", data.User.Name)
	line("Route", fmt.Sprintf("%s - %s", data.Route.Origin, data.Route.Destination))
	line("Bus", fmt.Sprintf("%s (%s)", data.Bus.BusName, data.Bus.BusNumber))
	line("Travel Date", data.Booking.TravelDate.Format("2006-01-02"))
	line("Departure", data.Route.DepartureTime.Format("15:04"))
	line("Arrival", data.Route.ArrivalTime.Format("15:04"))
	line("Seats", strings.Join(seatNumbers, ", "))
	line("Passengers", fmt.Sprintf("%d", data.Booking.PassengerCount))
	line("Amount Paid", fmt.Sprintf("%.2f", data.Payment.AmountPaid))
	line("Payment Status", string(data.Payment.PaymentStatus))

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 6, "Please carry a valid ID proof while boarding.", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render ticket PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Deliver renders and emails the ticket. Errors are returned for logging by
// the caller but must never roll back the payment.
func (s *TicketService) Deliver(data TicketData) error {
	pdfBytes, err := s.GeneratePDF(data)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Your FastX E-Ticket (Booking %s)", data.Booking.ID)
	body := fmt.Sprintf(
		"<h2>FastX E-Ticket</h2>"+
			"<p>Hi <b>%s</b>,</p>"+
			"<p>Thank you for booking with FastX. Your ticket is attached.</p>"+
			"<p>Route: %s - %s<br/>Travel date: %s<br/>Amount paid: %.2f</p>",
		data.User.Name, data.Route.Origin, data.Route.Destination,
		data.Booking.TravelDate.Format("2006-01-02"), data.Payment.AmountPaid)

	if err := s.mailer.Send(data.User.Email, subject, body, pdfBytes, "fastx-ticket.pdf"); err != nil {
		return fmt.Errorf("failed to deliver ticket: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": data.Booking.ID,
		"email":      data.User.Email,
	}).Info("E-ticket delivered")
	return nil
}
