package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/webhook"
)

// TestWebhookRequest is the optional body of POST /admin/test-webhook.
type TestWebhookRequest struct {
	BarberID        int64  `json:"barber_id"`
	BarberName      string `json:"barber_name"`
	Service         string `json:"service"`
	AppointmentTime string `json:"appointment_time"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerEmail   string `json:"customer_email"`
}

// DefaultTestBooking is sent when the test request has no body.
var DefaultTestBooking = TestWebhookRequest{
	BarberID:        1,
	BarberName:      "Test Barber",
	Service:         "Test Service",
	AppointmentTime: "2024-01-01 10:00 AM",
	CustomerName:    "Test Customer",
	CustomerPhone:   "1234567890",
	CustomerEmail:   "test@example.com",
}

// TestWebhook handles POST /admin/test-webhook: it sends a booking_created
// event without touching the catalog and reports the workflow's answer.
func (h *SalonHandler) TestWebhook(w http.ResponseWriter, r *http.Request) {
	req := DefaultTestBooking
	if r.Body != nil {
		var body TestWebhookRequest
		err := json.NewDecoder(r.Body).Decode(&body)
		switch {
		case errors.Is(err, io.EOF):
		case err != nil:
			jsonError(w, "Invalid request body", http.StatusBadRequest)
			return
		case body != (TestWebhookRequest{}):
			req = body
		}
	}

	result, err := h.webhook.CreateBooking(r.Context(), webhook.Booking{
		BarberID:        req.BarberID,
		BarberName:      req.BarberName,
		Service:         req.Service,
		AppointmentTime: req.AppointmentTime,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
	})
	if err != nil {
		h.logger.Warn("test webhook failed", "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"message":           "Booking created and added to Google Calendar",
		"calendar_event_id": result.CalendarEventID,
		"booking_id":        result.BookingID,
		"calendar_link":     result.CalendarLink,
	})
}

// PingWebhook handles GET /admin/webhook/ping with a test_connection event.
func (h *SalonHandler) PingWebhook(w http.ResponseWriter, r *http.Request) {
	if err := h.webhook.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"reachable": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reachable": true, "url": h.webhook.URL()})
}
