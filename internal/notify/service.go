// Package notify e-mails booking confirmations to customers.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/booking"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

// Service builds confirmation e-mails and hands them to an EmailSender.
// It satisfies booking.Notifier.
type Service struct {
	email     EmailSender
	salonName string
	logger    *logging.Logger
}

// NewService creates a notification service. A nil sender falls back to the stub.
func NewService(email EmailSender, salonName string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if email == nil {
		email = NewStubEmailSender(logger)
	}
	if strings.TrimSpace(salonName) == "" {
		salonName = defaultFromName
	}
	return &Service{email: email, salonName: salonName, logger: logger}
}

// SendBookingConfirmation e-mails the customer. Bookings without an e-mail
// address are skipped.
func (s *Service) SendBookingConfirmation(ctx context.Context, c booking.Confirmation) error {
	if strings.TrimSpace(c.CustomerEmail) == "" {
		s.logger.Debug("notify: no customer email, skipping confirmation", "booking_id", c.BookingID)
		return nil
	}

	msg := BookingConfirmationEmail(s.salonName, c)
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking confirmation: %w", err)
	}
	s.logger.Info("booking confirmation emailed", "booking_id", c.BookingID, "to", c.CustomerEmail)
	return nil
}

// BookingConfirmationEmail renders the plain-text and HTML confirmation.
func BookingConfirmationEmail(salonName string, c booking.Confirmation) EmailMessage {
	rows := [][2]string{
		{"Barber", c.BarberName},
		{"Service", c.Service},
		{"Date & Time", c.Slot},
		{"Name", c.CustomerName},
		{"Phone", c.CustomerPhone},
	}
	if c.CalendarLink != "" && strings.HasPrefix(c.CalendarLink, "http") {
		rows = append(rows, [2]string{"Calendar", c.CalendarLink})
	}

	var text, htm strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nYour appointment at %s is confirmed.\n\n", c.CustomerName, salonName)
	fmt.Fprintf(&htm, "<p>Hi %s,</p><p>Your appointment at %s is confirmed.</p><table>",
		html.EscapeString(c.CustomerName), html.EscapeString(salonName))
	for _, row := range rows {
		fmt.Fprintf(&text, "%s: %s\n", row[0], row[1])
		fmt.Fprintf(&htm, "<tr><td><strong>%s</strong></td><td>%s</td></tr>",
			html.EscapeString(row[0]), html.EscapeString(row[1]))
	}
	fmt.Fprintf(&text, "\nBooking reference: %s\n\nSee you soon!\n", c.BookingID)
	fmt.Fprintf(&htm, "</table><p>Booking reference: %s</p><p>See you soon!</p>", html.EscapeString(c.BookingID))

	return EmailMessage{
		To:      c.CustomerEmail,
		ToName:  c.CustomerName,
		Subject: fmt.Sprintf("Appointment confirmed: %s with %s", c.Service, c.BarberName),
		Body:    text.String(),
		HTML:    htm.String(),
	}
}
