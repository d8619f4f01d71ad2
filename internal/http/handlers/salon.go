package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/booking"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/bookings"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/catalog"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/slottime"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/webhook"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

// ChannelREST labels bookings made through POST /bookings.
const ChannelREST = "rest"

// APIVersion is reported by GET /.
const APIVersion = "1.0.0"

// Booker books a validated request.
type Booker interface {
	Book(ctx context.Context, channel string, req booking.Request) (*booking.Confirmation, error)
}

// BookingLister lists ledger rows.
type BookingLister interface {
	List(ctx context.Context, barberID int64, limit int) ([]bookings.Record, error)
}

// Webhook is the automation webhook surface used by the admin endpoints.
type Webhook interface {
	URL() string
	CreateBooking(ctx context.Context, b webhook.Booking) (*webhook.Result, error)
	Ping(ctx context.Context) error
}

// SalonHandler serves the public salon REST API.
type SalonHandler struct {
	store   catalog.DataStore
	booker  Booker
	ledger  BookingLister
	webhook Webhook
	logger  *logging.Logger
	now     func() time.Time
}

// NewSalonHandler wires the REST API. ledger may be nil.
func NewSalonHandler(store catalog.DataStore, booker Booker, ledger BookingLister, wh Webhook, logger *logging.Logger) *SalonHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SalonHandler{store: store, booker: booker, ledger: ledger, webhook: wh, logger: logger, now: time.Now}
}

// BarberView is the REST representation of a barber.
type BarberView struct {
	ID                      int64    `json:"id"`
	Name                    string   `json:"name"`
	Services                string   `json:"services"`
	ServicesList            []string `json:"services_list"`
	AvailableSlotsRaw       []string `json:"available_slots_raw"`
	AvailableSlotsFormatted []string `json:"available_slots_formatted"`
	TotalSlots              int      `json:"total_slots"`
}

func barberView(b catalog.Barber) BarberView {
	services := b.Services
	if services == nil {
		services = []string{}
	}
	raw := b.Slots
	if raw == nil {
		raw = []string{}
	}
	return BarberView{
		ID:                      b.ID,
		Name:                    b.Name,
		Services:                strings.Join(services, ", "),
		ServicesList:            services,
		AvailableSlotsRaw:       raw,
		AvailableSlotsFormatted: slottime.NormalizeAll(raw),
		TotalSlots:              len(raw),
	}
}

// SlotView pairs a stored slot with its display form.
type SlotView struct {
	Raw       string `json:"raw"`
	Formatted string `json:"formatted"`
}

// AvailabilityResponse is returned by GET /barbers/{id}/availability.
type AvailabilityResponse struct {
	BarberID       int64      `json:"barber_id"`
	BarberName     string     `json:"barber_name"`
	DateFilter     *string    `json:"date_filter"`
	AvailableSlots []SlotView `json:"available_slots"`
	TotalAvailable int        `json:"total_available"`
}

// BookingResponse is returned by POST /bookings.
type BookingResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	BookingID       string `json:"booking_id"`
	CalendarEventID string `json:"calendar_event_id"`
	CalendarLink    string `json:"calendar_link"`
}

// Root handles GET /.
func (h *SalonHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Barber Salon API is running", "version": APIVersion})
}

// Health handles GET /health.
func (h *SalonHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	database := "connected"
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health: data store ping failed", "error", err)
		database = "error"
	}
	webhookURL := ""
	if h.webhook != nil {
		webhookURL = h.webhook.URL()
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":          "healthy",
		"database":        database,
		"n8n_webhook_url": webhookURL,
		"timestamp":       h.now().Format(time.RFC3339),
	})
}

// ListBarbers handles GET /barbers.
func (h *SalonHandler) ListBarbers(w http.ResponseWriter, r *http.Request) {
	barbers, err := h.store.ListBarbers(r.Context())
	if err != nil {
		h.logger.Error("failed to list barbers", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]BarberView, 0, len(barbers))
	for _, b := range barbers {
		out = append(out, barberView(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetBarber handles GET /barbers/{barberID}.
func (h *SalonHandler) GetBarber(w http.ResponseWriter, r *http.Request) {
	barber, ok := h.loadBarber(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, barberView(*barber))
}

// Availability handles GET /barbers/{barberID}/availability?date=YYYY-MM-DD.
// Slots whose date cannot be parsed are always included.
func (h *SalonHandler) Availability(w http.ResponseWriter, r *http.Request) {
	barber, ok := h.loadBarber(w, r)
	if !ok {
		return
	}

	var filter *string
	if date := strings.TrimSpace(r.URL.Query().Get("date")); date != "" {
		filter = &date
	}

	slots := make([]SlotView, 0, len(barber.Slots))
	for _, raw := range barber.Slots {
		if filter != nil {
			if day, ok := slottime.DateOf(raw); ok && day != *filter {
				continue
			}
		}
		slots = append(slots, SlotView{Raw: raw, Formatted: slottime.Normalize(raw)})
	}

	writeJSON(w, http.StatusOK, AvailabilityResponse{
		BarberID:       barber.ID,
		BarberName:     barber.Name,
		DateFilter:     filter,
		AvailableSlots: slots,
		TotalAvailable: len(slots),
	})
}

// CreateBooking handles POST /bookings.
func (h *SalonHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req booking.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	// Accept stored (ISO) as well as display timestamps.
	req.Slot = slottime.Normalize(req.Slot)

	conf, err := h.booker.Book(r.Context(), ChannelREST, req)
	if err != nil {
		status, detail := bookingError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("failed to create booking", "error", err)
		}
		jsonError(w, detail, status)
		return
	}

	writeJSON(w, http.StatusOK, BookingResponse{
		Success: true,
		Message: "Appointment successfully booked with " + conf.BarberName + " for " + conf.Service +
			" at " + conf.Slot + " and added to Google Calendar",
		BookingID:       conf.BookingID,
		CalendarEventID: conf.CalendarEventID,
		CalendarLink:    conf.CalendarLink,
	})
}

func bookingError(err error) (int, string) {
	var werr *webhook.Error
	switch {
	case errors.Is(err, booking.ErrBarberNotFound):
		return http.StatusNotFound, "Barber not found"
	case errors.Is(err, booking.ErrSlotUnavailable):
		return http.StatusBadRequest, "Requested time slot is not available"
	case errors.Is(err, booking.ErrServiceNotOffered):
		detail := strings.TrimPrefix(err.Error(), booking.ErrServiceNotOffered.Error()+": ")
		return http.StatusBadRequest, upperFirst(detail)
	case errors.Is(err, booking.ErrIncompleteBooking):
		return http.StatusBadRequest, upperFirst(err.Error())
	case errors.Is(err, booking.ErrDuplicateBooking):
		return http.StatusConflict, "Requested time slot is already booked"
	case errors.As(err, &werr):
		return http.StatusBadGateway, werr.Message
	default:
		return http.StatusInternalServerError, "Failed to create booking: " + err.Error()
	}
}

// ListBookings handles GET /bookings[?barber_id=&limit=].
func (h *SalonHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Bookings endpoint not fully implemented yet",
			"note":    "Configure DATABASE_URL to keep a ledger of confirmed bookings",
		})
		return
	}

	q := r.URL.Query()
	barberID, _ := strconv.ParseInt(q.Get("barber_id"), 10, 64)
	limit, _ := strconv.Atoi(q.Get("limit"))

	recs, err := h.ledger.List(r.Context(), barberID, limit)
	if err != nil {
		h.logger.Error("failed to list bookings", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": recs, "total": len(recs)})
}

// ListServices handles GET /services.
func (h *SalonHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	barbers, err := h.store.ListBarbers(r.Context())
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	seen := map[string]struct{}{}
	services := []string{}
	for _, b := range barbers {
		for _, s := range b.Services {
			if _, dup := seen[s]; !dup {
				seen[s] = struct{}{}
				services = append(services, s)
			}
		}
	}
	sort.Strings(services)
	writeJSON(w, http.StatusOK, map[string]any{"services": services, "total": len(services)})
}

func (h *SalonHandler) loadBarber(w http.ResponseWriter, r *http.Request) (*catalog.Barber, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "barberID"), 10, 64)
	if err != nil {
		jsonError(w, "Invalid barber id", http.StatusBadRequest)
		return nil, false
	}
	barber, err := h.store.GetBarber(r.Context(), id)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		jsonError(w, "Barber not found", http.StatusNotFound)
		return nil, false
	case err != nil:
		h.logger.Error("failed to load barber", "barber_id", id, "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return barber, true
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
