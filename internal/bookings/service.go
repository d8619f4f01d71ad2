// Package bookings keeps a ledger of confirmed bookings in Postgres.
package bookings

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/booking"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

var bookingsTracer = otel.Tracer("barbersalon.internal.bookings")

// Ledger records confirmed bookings. It satisfies booking.Ledger.
type Ledger struct {
	repo   *Repository
	logger *logging.Logger
}

// NewLedger constructs a bookings ledger.
func NewLedger(repo *Repository, logger *logging.Logger) *Ledger {
	if repo == nil {
		panic("bookings: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Ledger{repo: repo, logger: logger}
}

// Record inserts the confirmation as a ledger row.
func (l *Ledger) Record(ctx context.Context, c booking.Confirmation) error {
	ctx, span := bookingsTracer.Start(ctx, "bookings.record")
	defer span.End()
	span.SetAttributes(
		attribute.String("barbersalon.booking_id", c.BookingID),
		attribute.String("barbersalon.barber_id", strconv.FormatInt(c.BarberID, 10)),
		attribute.String("barbersalon.channel", c.Channel),
	)

	rec := &Record{
		BookingID:       c.BookingID,
		CalendarEventID: c.CalendarEventID,
		CalendarLink:    c.CalendarLink,
		BarberID:        c.BarberID,
		BarberName:      c.BarberName,
		Service:         c.Service,
		AppointmentTime: c.Slot,
		CustomerName:    c.CustomerName,
		CustomerPhone:   c.CustomerPhone,
		CustomerEmail:   c.CustomerEmail,
		Channel:         c.Channel,
		BookedAt:        c.BookedAt,
	}
	if err := l.repo.Insert(ctx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	l.logger.Info("booking recorded", "id", rec.ID, "booking_id", c.BookingID, "barber_id", c.BarberID)
	return nil
}

// List returns recent bookings; barberID 0 lists every barber.
func (l *Ledger) List(ctx context.Context, barberID int64, limit int) ([]Record, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.list")
	defer span.End()

	recs, err := l.repo.List(ctx, barberID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return recs, nil
}
