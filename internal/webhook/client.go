// Package webhook posts confirmed bookings to the n8n automation workflow
// that creates the calendar event and notifies the customer.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

var tracer = otel.Tracer("barbersalon.internal.webhook")

var calendarLinkRE = regexp.MustCompile(`https://www\.google\.com/calendar/event\?eid=[^\s]+`)

const (
	// DefaultCalendarLink is reported when the workflow returns no link.
	DefaultCalendarLink = "Calendar event created successfully"
	userAgent           = "BarberSalonChatbot/1.0"
	maxResponseBytes    = 1 << 20
)

// Error is a failed workflow call. Message is safe to show to customers.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Result is what the workflow reported for a successful booking.
type Result struct {
	CalendarEventID string `json:"calendar_event_id"`
	BookingID       string `json:"booking_id"`
	CalendarLink    string `json:"calendar_link"`
}

// Client calls the workflow URL.
type Client struct {
	url             string
	salonName       string
	durationMinutes int
	timeout         time.Duration
	testTimeout     time.Duration
	httpClient      *http.Client
	logger          *logging.Logger
	now             func() time.Time
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithTimeouts(call, test time.Duration) Option {
	return func(c *Client) {
		if call > 0 {
			c.timeout = call
		}
		if test > 0 {
			c.testTimeout = test
		}
	}
}

// WithSalon sets the salon name and appointment length written into payloads.
func WithSalon(name string, durationMinutes int) Option {
	return func(c *Client) {
		if strings.TrimSpace(name) != "" {
			c.salonName = name
		}
		if durationMinutes > 0 {
			c.durationMinutes = durationMinutes
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a workflow client for url.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:             strings.TrimSpace(url),
		salonName:       "AI Barber Salon",
		durationMinutes: 60,
		timeout:         30 * time.Second,
		testTimeout:     10 * time.Second,
		httpClient:      &http.Client{},
		logger:          logging.Default(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the configured workflow URL.
func (c *Client) URL() string {
	return c.url
}

// CreateBooking posts a booking_created event. Any transport error, timeout
// or non-2xx status is returned as *Error.
func (c *Client) CreateBooking(ctx context.Context, b Booking) (*Result, error) {
	ctx, span := tracer.Start(ctx, "webhook.create_booking")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("barbersalon.barber_id", b.BarberID),
		attribute.String("barbersalon.appointment_time", b.AppointmentTime),
	)

	payload := BuildPayload(b, c.salonName, c.durationMinutes, c.now())
	c.logger.Info("calling booking webhook", "barber_id", b.BarberID, "service", b.Service, "slot", b.AppointmentTime)

	body, err := c.post(ctx, payload, c.timeout)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "webhook call failed")
		c.logger.Error("booking webhook failed", "error", err)
		return nil, err
	}

	result := c.parseResult(body)
	span.SetAttributes(attribute.String("barbersalon.calendar_event_id", result.CalendarEventID))
	return result, nil
}

// Ping sends a test_connection event using the shorter test timeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "webhook.ping")
	defer span.End()

	payload := Payload{
		EventType: EventTestConnection,
		Timestamp: c.now().Format(time.RFC3339),
		Message:   "Testing connection from Barber Salon API",
	}
	if _, err := c.post(ctx, payload, c.testTimeout); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "webhook ping failed")
		return err
	}
	return nil
}

// Send posts an arbitrary payload with the booking timeout.
func (c *Client) Send(ctx context.Context, payload Payload) (*Result, error) {
	body, err := c.post(ctx, payload, c.timeout)
	if err != nil {
		return nil, err
	}
	return c.parseResult(body), nil
}

func (c *Client) post(ctx context.Context, payload Payload, timeout time.Duration) ([]byte, error) {
	if c.url == "" {
		return nil, &Error{Message: "Failed to create calendar event: webhook URL not configured"}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Message: "Booking system error: " + err.Error(), Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Message: "Failed to create calendar event: " + err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("request timed out after %s", timeout)
		}
		return nil, &Error{Message: "Failed to create calendar event: " + msg, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Failed to create calendar event: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}
	return body, nil
}

// parseResult accepts a JSON object with the result fields, an n8n item list
// whose first element carries text with a calendar link, or anything else
// (treated as success with generated identifiers).
func (c *Client) parseResult(body []byte) *Result {
	result := &Result{}
	trimmed := bytes.TrimSpace(body)

	switch {
	case len(trimmed) == 0:
	case trimmed[0] == '{':
		if err := json.Unmarshal(trimmed, result); err != nil {
			c.logger.Warn("could not parse webhook response as JSON", "error", err)
			result = &Result{}
		}
	case trimmed[0] == '[':
		var items []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		}
		if err := json.Unmarshal(trimmed, &items); err != nil {
			c.logger.Warn("could not parse webhook response as JSON", "error", err)
			break
		}
		if len(items) > 0 && len(items[0].Content.Parts) > 0 {
			result.CalendarLink = calendarLinkRE.FindString(items[0].Content.Parts[0].Text)
		}
	default:
		c.logger.Warn("webhook returned a non-JSON body; treating as success")
	}

	pseudoID := "booking_" + c.now().Format("20060102_150405")
	if result.CalendarEventID == "" {
		result.CalendarEventID = pseudoID
	}
	if result.BookingID == "" {
		result.BookingID = pseudoID
	}
	if result.CalendarLink == "" {
		result.CalendarLink = DefaultCalendarLink
	}
	return result
}
