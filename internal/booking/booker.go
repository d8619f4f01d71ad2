package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/catalog"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/observability/metrics"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/slottime"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/webhook"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

var tracer = otel.Tracer("barbersalon.internal.booking")

var (
	ErrBarberNotFound    = errors.New("barber not found")
	ErrSlotUnavailable   = errors.New("requested time slot is not available")
	ErrServiceNotOffered = errors.New("service not offered")
	ErrIncompleteBooking = errors.New("booking details are incomplete")
	ErrDuplicateBooking  = errors.New("barber already booked at that time")
)

// Request is a booking ready to be sent to the automation workflow.
type Request struct {
	BarberID      *int64 `json:"barber_id"`
	Service       string `json:"service"`
	Slot          string `json:"appointment_time"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
}

// Validate reports missing required fields. A barber id of 0 is valid; only
// an absent one is missing.
func (r Request) Validate() error {
	var missing []string
	if r.BarberID == nil {
		missing = append(missing, "barber_id")
	}
	if strings.TrimSpace(r.Service) == "" {
		missing = append(missing, "service")
	}
	if strings.TrimSpace(r.Slot) == "" {
		missing = append(missing, "appointment_time")
	}
	if strings.TrimSpace(r.CustomerName) == "" {
		missing = append(missing, "customer_name")
	}
	if strings.TrimSpace(r.CustomerPhone) == "" {
		missing = append(missing, "customer_phone")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteBooking, strings.Join(missing, ", "))
	}
	return nil
}

// Confirmation is a booking the workflow accepted.
type Confirmation struct {
	BookingID       string    `json:"booking_id"`
	CalendarEventID string    `json:"calendar_event_id"`
	CalendarLink    string    `json:"calendar_link"`
	BarberID        int64     `json:"barber_id"`
	BarberName      string    `json:"barber_name"`
	Service         string    `json:"service"`
	Slot            string    `json:"appointment_time"`
	CustomerName    string    `json:"customer_name"`
	CustomerPhone   string    `json:"customer_phone"`
	CustomerEmail   string    `json:"customer_email"`
	Channel         string    `json:"channel"`
	BookedAt        time.Time `json:"booked_at"`
}

// WebhookClient creates the calendar event for a booking.
type WebhookClient interface {
	CreateBooking(ctx context.Context, b webhook.Booking) (*webhook.Result, error)
}

// Ledger records confirmed bookings.
type Ledger interface {
	Record(ctx context.Context, c Confirmation) error
}

// Notifier tells the customer about a confirmed booking.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, c Confirmation) error
}

// Booker validates a request against the data store, calls the workflow and
// removes the booked slot. Ledger and notifier are optional. Ledger failures
// are logged, except ErrDuplicateBooking which fails the booking.
type Booker struct {
	store    catalog.DataStore
	webhook  WebhookClient
	ledger   Ledger
	notifier Notifier
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// BookerOption configures a Booker.
type BookerOption func(*Booker)

func WithLedger(l Ledger) BookerOption {
	return func(b *Booker) { b.ledger = l }
}

func WithNotifier(n Notifier) BookerOption {
	return func(b *Booker) { b.notifier = n }
}

func WithMetrics(m *metrics.BookingMetrics) BookerOption {
	return func(b *Booker) { b.metrics = m }
}

func WithLogger(l *logging.Logger) BookerOption {
	return func(b *Booker) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBooker creates a Booker.
func NewBooker(store catalog.DataStore, wh WebhookClient, opts ...BookerOption) *Booker {
	if store == nil {
		panic("booking: data store cannot be nil")
	}
	if wh == nil {
		panic("booking: webhook client cannot be nil")
	}
	b := &Booker{store: store, webhook: wh, logger: logging.Default(), now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Book books req through channel ("chat" or "rest").
func (b *Booker) Book(ctx context.Context, channel string, req Request) (*Confirmation, error) {
	ctx, span := tracer.Start(ctx, "booking.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("barbersalon.channel", channel),
		attribute.String("barbersalon.slot", req.Slot),
	)
	if req.BarberID != nil {
		span.SetAttributes(attribute.Int64("barbersalon.barber_id", *req.BarberID))
	}

	conf, err := b.book(ctx, channel, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "booking failed")
		b.metrics.ObserveBooking(channel, outcomeFor(err))
		return nil, err
	}
	b.metrics.ObserveBooking(channel, "confirmed")
	return conf, nil
}

func (b *Booker) book(ctx context.Context, channel string, req Request) (*Confirmation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	barber, err := b.store.GetBarber(ctx, *req.BarberID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrBarberNotFound
		}
		return nil, fmt.Errorf("booking: load barber %d: %w", *req.BarberID, err)
	}

	remaining, found := removeSlot(barber.Slots, req.Slot)
	if !found {
		return nil, ErrSlotUnavailable
	}
	if !barber.OffersService(req.Service) {
		return nil, fmt.Errorf("%w: service '%s' is not offered by %s. Available services: %s",
			ErrServiceNotOffered, req.Service, barber.Name, strings.Join(barber.Services, ", "))
	}

	start := time.Now()
	result, err := b.webhook.CreateBooking(ctx, webhook.Booking{
		BarberID:        barber.ID,
		BarberName:      barber.Name,
		Service:         req.Service,
		AppointmentTime: req.Slot,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
	})
	if err != nil {
		b.metrics.ObserveWebhookLatency("error", time.Since(start).Seconds())
		return nil, err
	}
	b.metrics.ObserveWebhookLatency("success", time.Since(start).Seconds())

	if err := b.store.UpdateSlots(ctx, barber.ID, remaining); err != nil {
		b.logger.Error("failed to remove booked slot; booking still confirmed",
			"barber_id", barber.ID, "slot", req.Slot, "error", err)
	}

	conf := &Confirmation{
		BookingID:       result.BookingID,
		CalendarEventID: result.CalendarEventID,
		CalendarLink:    result.CalendarLink,
		BarberID:        barber.ID,
		BarberName:      barber.Name,
		Service:         req.Service,
		Slot:            req.Slot,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		Channel:         channel,
		BookedAt:        b.now().UTC(),
	}
	b.logger.Info("booking confirmed",
		"channel", channel, "barber_id", barber.ID, "slot", req.Slot, "booking_id", conf.BookingID)

	if b.ledger != nil {
		if err := b.ledger.Record(ctx, *conf); err != nil {
			b.logger.Error("failed to record booking", "booking_id", conf.BookingID, "error", err)
			if errors.Is(err, ErrDuplicateBooking) {
				return nil, err
			}
		}
	}
	if b.notifier != nil && conf.CustomerEmail != "" {
		if err := b.notifier.SendBookingConfirmation(ctx, *conf); err != nil {
			b.logger.Warn("failed to send confirmation email", "booking_id", conf.BookingID, "error", err)
		}
	}
	return conf, nil
}

// removeSlot drops the first raw slot whose display form equals slot.
func removeSlot(raw []string, slot string) ([]string, bool) {
	for i, r := range raw {
		if slottime.Normalize(r) == slot {
			out := make([]string, 0, len(raw)-1)
			out = append(out, raw[:i]...)
			return append(out, raw[i+1:]...), true
		}
	}
	return raw, false
}

func outcomeFor(err error) string {
	var werr *webhook.Error
	switch {
	case errors.As(err, &werr):
		return "webhook_failed"
	case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrServiceNotOffered),
		errors.Is(err, ErrBarberNotFound), errors.Is(err, ErrIncompleteBooking),
		errors.Is(err, ErrDuplicateBooking):
		return "rejected"
	default:
		return "error"
	}
}
